package client

type NoticeKind string

const (
	NoticeSuccess      NoticeKind = "success"
	NoticeError        NoticeKind = "error"
	NoticeAuthRequired NoticeKind = "auth_required"
)

// Notice is a transient user-facing message about an operation's outcome.
type Notice struct {
	Kind    NoticeKind
	Op      Op
	Message string
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discard struct{}

func (discard) Notify(Notice) {}
