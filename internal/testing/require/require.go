// Package require contains assertion helpers that stop the test on the first failure.
package require

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func Equal(t *testing.T, x, y any) {
	t.Helper()
	if !reflect.DeepEqual(x, y) {
		t.Fatalf("`%v` != `%v`", x, y)
	}
}

func NotEqual(t *testing.T, x, y any) {
	t.Helper()
	if reflect.DeepEqual(x, y) {
		t.Fatalf("`%v` == `%v`", x, y)
	}
}

func Nil(t *testing.T, x any) {
	t.Helper()
	if !isNil(x) {
		t.Fatalf("expected <nil>, got `%v`", x)
	}
}

func NotNil(t *testing.T, x any) {
	t.Helper()
	if isNil(x) {
		t.Fatalf("expected not <nil>, got `%v`", x)
	}
}

func True(t *testing.T, x bool) {
	t.Helper()
	if !x {
		t.Fatal("expected true")
	}
}

// ErrorIs checks err with [errors.Is].
func ErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error matching `%v`, got `%v`", target, err)
	}
}

// Contains checks that s contains substr.
func Contains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Fatalf("expected `%s` to contain `%s`", s, substr)
	}
}

func PanicWithError(t *testing.T, errMsg string, f func()) {
	t.Helper()

	msg, did := catch(f)
	if !did {
		t.Fatal("expected panic")
	}
	if msg != errMsg {
		t.Fatalf("expected panic error `%s`, got `%v`", errMsg, msg)
	}
}

func isNil(i any) bool {
	if i == nil {
		return true
	}

	v := reflect.ValueOf(i)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}

	return false
}

// catch calls f and returns the recovered value, if f panicked.
func catch(f func()) (recovered any, panicked bool) {
	panicked = true
	defer func() {
		if panicked {
			recovered = recover()
		}
	}()

	f()
	panicked = false

	return nil, false
}
