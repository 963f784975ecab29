package media

import (
	"errors"
	"testing"
)

func TestValidateLink(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ",
		"http://youtube.com/watch?v=abc",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=abc",
		"https://music.youtube.com/watch?v=abc",
		"https://WWW.YOUTUBE.COM/watch?v=abc",
	}
	for _, link := range valid {
		if err := ValidateLink(link); err != nil {
			t.Errorf("ValidateLink(%q) = %v, want nil", link, err)
		}
	}

	invalid := []string{
		"",
		"not a url",
		"ftp://youtube.com/watch?v=abc",
		"https://vimeo.com/12345",
		"https://example.com/watch?v=abc",
		"https://notyoutube.com/watch?v=abc",
		"javascript:alert(1)",
	}
	for _, link := range invalid {
		if err := ValidateLink(link); !errors.Is(err, ErrInvalidLink) {
			t.Errorf("ValidateLink(%q) = %v, want ErrInvalidLink", link, err)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo\nthree"); got != "one" {
		t.Errorf("firstLine = %q, want one", got)
	}
	if got := firstLine("single"); got != "single" {
		t.Errorf("firstLine = %q, want single", got)
	}
}
