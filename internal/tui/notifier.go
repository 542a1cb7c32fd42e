package tui

import tea "github.com/charmbracelet/bubbletea"

// Notices carries storefront notices into the program. Notify never blocks;
// when the buffer is full the notice is dropped.
type Notices chan string

// NewNotices creates a buffered notice channel.
func NewNotices() Notices {
	return make(Notices, 16)
}

func (n Notices) Notify(msg string) {
	select {
	case n <- msg:
	default:
	}
}

type noticeMsg string

func waitForNotice(n Notices) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-n)
	}
}
