package trigram

import "fmt"

// Encoder assigns stable integer IDs to symbols and contexts. IDs come from
// two independent counters that only ever move forward, so an ID is never
// reused within one Encoder.
type Encoder struct {
	symbolIDs     map[rune]int
	symbols       map[int]rune
	contextIDs    map[Context]int
	contexts      map[int]Context
	nextSymbolID  int
	nextContextID int
}

// NewEncoder walks the Alphabet and the contexts of t once each, in canonical
// order, handing out IDs as it goes.
func NewEncoder(t *CountTable) *Encoder {
	e := &Encoder{
		symbolIDs:  make(map[rune]int, t.alphabet.Len()),
		symbols:    make(map[int]rune, t.alphabet.Len()),
		contextIDs: make(map[Context]int, t.Len()),
		contexts:   make(map[int]Context, t.Len()),
	}
	for _, r := range t.alphabet.symbols {
		e.addSymbol(r)
	}
	for _, c := range t.Contexts() {
		e.addContext(c)
	}
	return e
}

func (e *Encoder) addSymbol(r rune) {
	if _, ok := e.symbolIDs[r]; ok {
		return
	}
	id := e.nextSymbolID
	e.nextSymbolID++
	e.symbolIDs[r] = id
	e.symbols[id] = r
}

func (e *Encoder) addContext(c Context) {
	if _, ok := e.contextIDs[c]; ok {
		return
	}
	id := e.nextContextID
	e.nextContextID++
	e.contextIDs[c] = id
	e.contexts[id] = c
}

// SymbolID returns the ID assigned to r.
func (e *Encoder) SymbolID(r rune) (int, error) {
	id, ok := e.symbolIDs[r]
	if !ok {
		return 0, fmt.Errorf("%w: symbol %q", ErrEncoding, r)
	}
	return id, nil
}

// Symbol returns the symbol assigned to id.
func (e *Encoder) Symbol(id int) (rune, error) {
	r, ok := e.symbols[id]
	if !ok {
		return 0, fmt.Errorf("%w: symbol id %d", ErrEncoding, id)
	}
	return r, nil
}

// ContextID returns the ID assigned to c.
func (e *Encoder) ContextID(c Context) (int, error) {
	id, ok := e.contextIDs[c]
	if !ok {
		return 0, fmt.Errorf("%w: context %q", ErrEncoding, c.String())
	}
	return id, nil
}

// Context returns the context assigned to id.
func (e *Encoder) Context(id int) (Context, error) {
	c, ok := e.contexts[id]
	if !ok {
		return Context{}, fmt.Errorf("%w: context id %d", ErrEncoding, id)
	}
	return c, nil
}

// NumSymbols returns how many symbol IDs have been handed out.
func (e *Encoder) NumSymbols() int {
	return e.nextSymbolID
}

// NumContexts returns how many context IDs have been handed out.
func (e *Encoder) NumContexts() int {
	return e.nextContextID
}
