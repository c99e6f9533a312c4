package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
)

func TestWrap_KeepsExistingKind(t *testing.T) {
	inner := Wrap(KindParse, "parse address", errors.New("bad"))
	outer := Wrap(KindQuery, "get balance", fmt.Errorf("wrapped: %w", inner))

	if got := KindOf(outer); got != KindParse {
		t.Errorf("expected parse, got %s", got)
	}
}

func TestWrap_DeadlineIsTimeout(t *testing.T) {
	err := Wrap(KindConnection, "dial", fmt.Errorf("dial: %w", context.DeadlineExceeded))
	if got := KindOf(err); got != KindTimeout {
		t.Errorf("expected timeout, got %s", got)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected wrapped deadline to be preserved")
	}
}

func TestWrap_Nil(t *testing.T) {
	if err := Wrap(KindQuery, "noop", nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{Offset: 1}

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"json syntax", fmt.Errorf("decode: %w", syntaxErr), KindParse},
		{"json type", &json.UnmarshalTypeError{Value: "string"}, KindParse},
		{"url error", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("connection refused")}, KindConnection},
		{"other", errors.New("execution reverted"), KindQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestFetchError_Message(t *testing.T) {
	err := &FetchError{Kind: KindQuery, Op: "eth_getBalance", Network: "ethereum", Err: errors.New("boom")}
	want := "[query] eth_getBalance on ethereum: boom"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
