package entity

// DigestItem is one summarized video as it appears in the daily digest.
type DigestItem struct {
	ItemID         string
	Title          string
	URL            string
	SourceTitle    string
	PublishedLocal string
	Headline       string
	Points         []string
}

// Digest is the daily report for one local date. Items preserve the
// publication order of the underlying day file. A digest with zero items
// is still valid and still gets rendered and delivered.
type Digest struct {
	Date  string
	Items []DigestItem
}
