package corpus

import "context"

// Stats holds aggregated statistics for every stored corpus.
type Stats struct {
	Corpora []Info      `json:"corpora"` // A list of corpora in the database
	Entries map[int]int `json:"entries"` // A mapping of corpus ids to their entry counts
	Batches map[int]int `json:"batches"` // A mapping of corpus ids to their import batch counts
}

// GetStats returns a snapshot of per-corpus entry and batch counts.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	infos, err := s.GetCorpusInfos(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Corpora: make([]Info, 0, len(infos)),
		Entries: make(map[int]int, len(infos)),
		Batches: make(map[int]int, len(infos)),
	}
	for _, info := range infos {
		var entries, batches int
		if err = s.stmtCountEntries.QueryRowContext(ctx, info.Id).Scan(&entries); err != nil {
			return nil, err
		}
		if err = s.stmtCountBatches.QueryRowContext(ctx, info.Id).Scan(&batches); err != nil {
			return nil, err
		}
		stats.Corpora = append(stats.Corpora, info)
		stats.Entries[info.Id] = entries
		stats.Batches[info.Id] = batches
	}
	return stats, nil
}
