package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNote_EscapesMentionsAndKeepsFirstLine(t *testing.T) {
	b := Build{Message: "Fix @alice's bug\nmore detail", Author: &Author{Name: "Bob"}}
	assert.Equal(t, "Fix @ alice's bug *by Bob*", FormatNote(b))
}

func TestFormatNote_UnknownAuthor(t *testing.T) {
	assert.Equal(t, "Bump deps *by (unknown)*", FormatNote(Build{Message: "Bump deps"}))
	assert.Equal(t, "Bump deps *by (unknown)*", FormatNote(Build{Message: "Bump deps", Author: &Author{}}))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", FirstLine("one"))
	assert.Equal(t, "one", FirstLine("one\ntwo\nthree"))
	assert.Equal(t, "", FirstLine("\ntwo"))
	assert.Equal(t, "", FirstLine(""))
}

func TestEscapeMentions(t *testing.T) {
	assert.Equal(t, "cc @ team @ here", EscapeMentions("cc @team @here"))
}
