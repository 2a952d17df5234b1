package domain

// NoticeVariant selects how a notice is presented.
type NoticeVariant string

const (
	NoticeDefault     NoticeVariant = "default"
	NoticeDestructive NoticeVariant = "destructive"
)

// Notice is a transient, user-visible message (a toast).
type Notice struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Variant     NoticeVariant `json:"variant"`
}

// Info builds a default notice.
func Info(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: NoticeDefault}
}

// Warning builds a destructive notice.
func Warning(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: NoticeDestructive}
}
