package domain

// ContentKind distinguishes text messages from everything else
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentNonText
)

func (k ContentKind) String() string {
	if k == ContentText {
		return "text"
	}
	return "non_text"
}

// InboundMessage is an immutable snapshot of one received message
type InboundMessage struct {
	UserID    int64
	Username  string
	Text      string
	Raw       string // text exactly as typed, for secrets
	Kind      ContentKind
	IsCommand bool
	Command   string // lowercase, without leading slash and bot mention
}
