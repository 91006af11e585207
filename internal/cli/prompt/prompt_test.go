package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rvctools/vcinstall/internal/errors"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		options []string
		want    int
		wantErr error
	}{
		{"picks by number", "2\n", []string{"update", "reinstall"}, 1, nil},
		{"empty defaults to first", "\n", []string{"update", "reinstall"}, 0, nil},
		{"single option auto-selects", "", []string{"update"}, 0, nil},
		{"not a number", "abc\n", []string{"a", "b"}, 0, ErrInvalidSelection},
		{"out of range", "5\n", []string{"a", "b"}, 0, ErrInvalidSelection},
		{"eof cancels", "", []string{"a", "b"}, 0, ErrSelectionCancelled},
		{"no options", "1\n", nil, 0, ErrNoOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewWithIO(strings.NewReader(tt.input), &out)

			got, err := p.Select("Existing installation found:", tt.options)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Select() = %d, want %d", got, tt.want)
			}
		})
	}
}

// Both pipeline questions are answered from the same stdin. The answer to
// the second question must survive any buffering done while reading the
// first.
func TestSelectThenConfirm_SharedInput(t *testing.T) {
	var out bytes.Buffer
	p := NewWithIO(strings.NewReader("2\ny\n"), &out)

	choice, err := p.Select("Existing installation found:", []string{"Update in place", "Clean reinstall"})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if choice != 1 {
		t.Errorf("Select() = %d, want 1", choice)
	}

	launch, err := p.Confirm("Launch now?", false)
	if err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}
	if !launch {
		t.Error("Confirm() = false, want true")
	}
}

func TestSelect_ShowsOptions(t *testing.T) {
	var out bytes.Buffer
	p := NewWithIO(strings.NewReader("1\n"), &out)

	if _, err := p.Select("Existing installation found:", []string{"Update in place", "Clean reinstall"}); err != nil {
		t.Fatal(err)
	}

	display := out.String()
	for _, want := range []string{"[1] Update in place", "[2] Clean reinstall", "Select [1]:"} {
		if !strings.Contains(display, want) {
			t.Errorf("prompt missing %q:\n%s", want, display)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		def     bool
		want    bool
		wantErr error
	}{
		{"yes", "y\n", false, true, nil},
		{"full yes", "yes\n", false, true, nil},
		{"no", "n\n", true, false, nil},
		{"empty takes default true", "\n", true, true, nil},
		{"empty takes default false", "\n", false, false, nil},
		{"garbage", "maybe\n", false, false, ErrInvalidSelection},
		{"eof cancels", "", false, false, ErrSelectionCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewWithIO(strings.NewReader(tt.input), &out)

			got, err := p.Confirm("Launch now?", tt.def)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Confirm() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}
