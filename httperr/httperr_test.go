// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithCode(t *testing.T) {
	t.Parallel()

	t.Run("wraps error with code", func(t *testing.T) {
		t.Parallel()

		baseErr := errors.New("release lookup failed")
		err := WithCode(baseErr, http.StatusNotFound)

		require.NotNil(t, err)
		coded, ok := err.(*CodedError)
		require.True(t, ok, "expected *CodedError, got %T", err)
		require.Equal(t, http.StatusNotFound, coded.HTTPCode())
		require.Equal(t, "release lookup failed", coded.Error())
		require.ErrorIs(t, err, baseErr)
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		t.Parallel()

		require.Nil(t, WithCode(nil, http.StatusNotFound))
	})
}

func TestCode(t *testing.T) {
	t.Parallel()

	t.Run("extracts code from wrapped chain", func(t *testing.T) {
		t.Parallel()

		baseErr := New("rate limited", http.StatusTooManyRequests)
		wrapped := fmt.Errorf("fetching releases: %w", baseErr)
		require.Equal(t, http.StatusTooManyRequests, Code(wrapped))
	})

	t.Run("returns 500 for uncoded error", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, http.StatusInternalServerError, Code(errors.New("plain")))
	})

	t.Run("returns 200 for nil", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, http.StatusOK, Code(nil))
	})
}

func TestClassifiers(t *testing.T) {
	t.Parallel()

	notFound := New("no such repo", http.StatusNotFound)
	forbidden := fmt.Errorf("wrapped: %w", New("private repo", http.StatusForbidden))
	unauthorized := New("bad token", http.StatusUnauthorized)
	rateLimited := New("slow down", http.StatusTooManyRequests)
	plain := errors.New("boom")

	require.True(t, IsNotFound(notFound))
	require.False(t, IsNotFound(forbidden))

	require.True(t, IsDenied(forbidden))
	require.True(t, IsDenied(unauthorized))
	require.False(t, IsDenied(notFound))

	require.True(t, IsRateLimited(rateLimited))
	require.False(t, IsRateLimited(plain))

	require.True(t, IsAbsence(notFound))
	require.True(t, IsAbsence(forbidden))
	require.False(t, IsAbsence(rateLimited))
	require.False(t, IsAbsence(plain))
}
