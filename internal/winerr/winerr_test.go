package winerr_test

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/wintool/internal/winerr"
)

func TestNew_CarriesCode(t *testing.T) {
	t.Parallel()

	err := winerr.New("OpenProcess", syscall.Errno(5))

	var e *winerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "OpenProcess", e.Op)
	assert.Equal(t, syscall.Errno(5), e.Code)
	assert.Contains(t, err.Error(), "OpenProcess")
	assert.Contains(t, err.Error(), "(code 5)")
}

func TestError_IsMatchesRawCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("reading memory: %w", winerr.New("ReadProcessMemory", syscall.Errno(299)))

	assert.ErrorIs(t, err, syscall.Errno(299))
	assert.NotErrorIs(t, err, syscall.Errno(5))
}

func TestFromCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       error
		wantCode syscall.Errno
		wantOK   bool
	}{
		{name: "errno", in: syscall.Errno(6), wantCode: 6, wantOK: true},
		{name: "zero errno", in: syscall.Errno(0), wantCode: 0, wantOK: true},
		{name: "nil", in: nil, wantCode: 0, wantOK: true},
		{name: "foreign error", in: errors.New("boom"), wantCode: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := winerr.FromCall("CreateTimerQueue", tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "CreateTimerQueue")

			code, ok := winerr.Code(err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestCode_PlainErrno(t *testing.T) {
	t.Parallel()

	code, ok := winerr.Code(syscall.Errno(18))
	assert.True(t, ok)
	assert.Equal(t, syscall.Errno(18), code)
}
