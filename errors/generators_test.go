package errors

import (
	"reflect"
	"testing"
)

func TestNewResourceNotFoundError(t *testing.T) {
	type args struct {
		message string
		details Details
	}
	tests := []struct {
		name string
		args args
		want Error
	}{
		{
			name: "without details",
			args: args{
				message: "hello world",
				details: nil,
			},
			want: Error{
				Code:    ErrNotFound,
				Kind:    KindResourceNotFound,
				Err:     nil,
				Message: "hello world",
				Details: nil,
			},
		},
		{
			name: "with details",
			args: args{
				message: "hello world",
				details: Details{"hello": "world"},
			},
			want: Error{
				Code:    ErrNotFound,
				Kind:    KindResourceNotFound,
				Err:     nil,
				Message: "hello world",
				Details: Details{"hello": "world"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err, ok := Cast(NewResourceNotFoundError(tt.args.message, tt.args.details)); !ok || !reflect.DeepEqual(err, tt.want) {
				t.Errorf("NewResourceNotFoundError() error = %v, ok = %v, want %v, ok = %v", err, ok, tt.want, true)
			}
		})
	}
}

func TestNewRejectionError(t *testing.T) {
	err := NewRejectionError(KindTeamFull, "team full", Details{"team": "red"})
	e, ok := Cast(err)
	if !ok {
		t.Fatalf("NewRejectionError() should return Error")
	}
	if e.Code != ErrBadRequest || e.Kind != KindTeamFull {
		t.Errorf("NewRejectionError() code = %v, kind = %v, want %v, %v", e.Code, e.Kind, ErrBadRequest, KindTeamFull)
	}
	if !BlameUser(err) {
		t.Errorf("BlameUser() should be true for rejections")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{
			name: "matching kind",
			err:  NewRejectionError(KindOwnBed, "own bed", nil),
			kind: KindOwnBed,
			want: true,
		},
		{
			name: "other kind",
			err:  NewRejectionError(KindOwnBed, "own bed", nil),
			kind: KindTeamFull,
			want: false,
		},
		{
			name: "wrapped",
			err:  Wrap(NewRejectionError(KindUnknownMap, "unknown", nil), "force map", nil),
			kind: KindUnknownMap,
			want: true,
		},
		{
			name: "nil",
			err:  nil,
			kind: KindUnknownMap,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.kind); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}
