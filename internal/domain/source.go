package domain

// SourceRecord is one headword as read from a dictionary source file, before
// it is merged into the dictionary being assembled.
type SourceRecord struct {
	Head        string
	POS         string
	Paradigm    string
	FSTLemma    string
	Analysis    string
	Definitions []string
}
