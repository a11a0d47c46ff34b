package ilerr

import (
	"fmt"
	"log/slog"
	"strings"
)

type Errors struct {
	errs []TipError
}

func (r *Errors) With(err ...TipError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []TipError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

// First returns the earliest recorded error, or nil
func (r *Errors) First() TipError {
	if !r.HasError() {
		return nil
	}
	return r.errs[0]
}

// Error makes Errors usable as an error once HasError holds
func (r *Errors) Error() string {
	sb := &strings.Builder{}
	for i, e := range r.Errors() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(FormatWithCode(e))
	}
	return sb.String()
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
