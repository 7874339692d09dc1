/*
Package corpus loads and stores the training corpora used by the trigram
model: plain newline-separated name lists, and named corpora kept in a
SQLite database so a model can always be retrained from a fresh scan.
*/
package corpus
