package context

type Key string

const (
	Claims Key = "claims"
	Facts  Key = "session_facts"
	Params Key = "params"
)
