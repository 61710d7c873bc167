package dto

import "time"

type CreateNoteRequest struct {
	CategoryId int64  `json:"categoryId"`
	Content    string `json:"content"`
	Private    bool   `json:"private"`
	// Password is needed only when the note is private and the store has
	// a password configured.
	Password string `json:"password,omitempty"`
}

type UpdateNoteRequest struct {
	Id         int64  `json:"-" validate:"gt=0"`
	CategoryId int64  `json:"categoryId"`
	Content    string `json:"content"`
	Private    bool   `json:"private"`
	Password   string `json:"password,omitempty"`
}

type ShowNoteRequest struct {
	Id       int64
	Password string
}

type NoteResponse struct {
	Id           int64     `json:"id"`
	CategoryId   int64     `json:"categoryId"`
	CreateTime   time.Time `json:"createTime"`
	ModTime      time.Time `json:"modTime"`
	PrivacyLevel int       `json:"privacyLevel"`
	// Content is omitted for encrypted notes when no (or a wrong)
	// password accompanies the request.
	Content string `json:"content,omitempty"`
}
