package ui

import (
	"github.com/fatih/color"
	spfcbr "github.com/spf13/cobra"
)

type Question struct {
	Text         string
	Options      []string
	Handler      func(string) error
	FilePath     bool
	PasswordType bool
	Color        color.Attribute
	CursorStr    string
}
type UI interface {
	SetQuestions(questions []Question)
	RunInteractiveUI()
	SetCobra(cobra *spfcbr.Command)
	AfterPreRun()
	BeforePreRun()
	AfterRun()
	BeforeRun()
}

func New() UI {
	return &ui{
		cobra:     nil,
		questions: nil,
		index:     0,
		input:     "",
		cursor:    0,
		errorMsg:  "",
	}
}
