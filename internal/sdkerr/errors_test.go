// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sdkerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		op     Op
		status int
		want   Sub
	}{
		{OpStartArchive, http.StatusBadRequest, SubInvalidSession},
		{OpStartArchive, http.StatusForbidden, SubInvalidKey},
		{OpStartArchive, http.StatusNotFound, SubNoSuchSession},
		{OpStartArchive, http.StatusConflict, SubAlreadyRecording},
		{OpStartArchive, http.StatusInternalServerError, SubProviderError},
		{OpStopArchive, http.StatusConflict, SubNotRecording},
		{OpStopArchive, http.StatusNotFound, SubUnclassified},
		{OpDeleteArchive, http.StatusForbidden, SubInvalidKey},
		{OpDeleteArchive, http.StatusBadRequest, SubUnclassified},
		{OpListArchives, http.StatusInternalServerError, SubProviderError},
		{OpGetArchive, http.StatusTeapot, SubUnclassified},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_%d", tc.op, tc.status), func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.op, tc.status))
		})
	}
}

func TestAnnotate_RequestFailed(t *testing.T) {
	base := RequestFailed(http.StatusForbidden, "Error response: message: Forbidden", nil)

	err := Annotate(OpListArchives, fmt.Errorf("wrapped: %w", base))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.True(t, errors.Is(err, SubInvalidKey))
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
	assert.Equal(t, SubInvalidKey, SubOf(err))
	assert.Empty(t, base.Sub, "annotate must not mutate the original error")
}

func TestAnnotate_LeavesOtherKindsAlone(t *testing.T) {
	in := InvalidArgument(OpStartArchive, "Session not valid")
	assert.Same(t, in, Annotate(OpStartArchive, in))

	plain := errors.New("boom")
	assert.Equal(t, plain, Annotate(OpStartArchive, plain))
}

func TestError_UnwrapCause(t *testing.T) {
	err := RequestFailed(http.StatusInternalServerError, context.DeadlineExceeded.Error(), context.DeadlineExceeded)

	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "opentok: request failed (HTTP 500): context deadline exceeded", err.Error())
}

func TestError_Message(t *testing.T) {
	err := SessionNotFound(OpGenerateToken, nil)
	assert.Equal(t, "opentok: generate_token: session not found: Session not found", err.Error())
	assert.Equal(t, 0, StatusOf(err))
	assert.Equal(t, Sub(""), SubOf(errors.New("x")))
}
