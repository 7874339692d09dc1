/*
Package trigram provides a character-level trigram Markov model for short
strings such as names.

A model is learned from an in-memory corpus: the distinct characters of the
corpus plus a reserved boundary symbol form the Alphabet, every
(context, next-symbol) triple over that Alphabet is counted with Laplace
smoothing, and the counts are normalised into a dense probability matrix.
The model can then generate new strings from a starting symbol using a
caller-supplied random source, and score a corpus by mean negative
log-likelihood.

All types are immutable once built and are safe for concurrent use.
*/
package trigram
