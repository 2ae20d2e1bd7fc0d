package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taman-digital/internal/domain"
)

func TestMessageHandler(t *testing.T) {
	s := newTestServer(t, nil)
	sari := s.register(t, "sari")
	budi := s.register(t, "budi")

	w := s.do(t, http.MethodPost, "/api/v1/me/messages/budi", sari, SendMessageRequest{Content: "Halo Budi"})
	require.Equal(t, http.StatusCreated, w.Code)
	msg := decode[domain.Message](t, w)
	assert.Equal(t, "sari", msg.SenderUsername)
	assert.Equal(t, "budi", msg.ReceiverUsername)

	w = s.do(t, http.MethodPost, "/api/v1/me/messages/sari", budi, SendMessageRequest{Content: "Halo Sari"})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("conversation", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/me/messages/sari", budi, nil)
		require.Equal(t, http.StatusOK, w.Code)
		thread := decode[[]domain.Message](t, w)
		require.Len(t, thread, 2)
		assert.Equal(t, "Halo Budi", thread[0].Content)
	})

	t.Run("partners", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/me/conversations", sari, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []any{"budi"}, decode[map[string]any](t, w)["partners"])
	})

	t.Run("unknown receiver", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/me/messages/nobody", sari, SendMessageRequest{Content: "halo"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("empty message", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/me/messages/budi", sari, SendMessageRequest{Content: ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
