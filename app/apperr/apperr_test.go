package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserMessage(t *testing.T) {
	require.Equal(t, "Giá bán không hợp lệ", UserMessage(Validation("Giá bán không hợp lệ")))
	require.Equal(t, GenericMessage, UserMessage(Persistence(errors.New("connection refused"))))
	require.Equal(t, GenericMessage, UserMessage(errors.New("boom")))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("delete student: %w", NotFound("Không tìm thấy học sinh"))
	require.Equal(t, KindNotFound, KindOf(err))
	require.True(t, IsNotFound(err))
	require.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestPersistenceUnwraps(t *testing.T) {
	cause := errors.New("db down")
	err := Persistence(cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "persistence")
}
