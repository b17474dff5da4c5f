package storage

import (
	"testing"

	"roomchat/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestOldestFirst_Empty(t *testing.T) {
	assert.Empty(t, oldestFirst(nil))
	assert.Empty(t, oldestFirst([]models.Message{}))
}

func TestOldestFirst_SingleElement(t *testing.T) {
	msgs := []models.Message{{ID: 7, Text: "hello"}}

	got := oldestFirst(msgs)

	assert.Len(t, got, 1)
	assert.Equal(t, uint(7), got[0].ID)
}

func TestOldestFirst_FlipsDescendingTail(t *testing.T) {
	// The way a LIMIT-ed tail query hands them over: newest first.
	msgs := []models.Message{
		{ID: 5, Text: "fifth"},
		{ID: 4, Text: "fourth"},
		{ID: 3, Text: "third"},
		{ID: 2, Text: "second"},
	}

	got := oldestFirst(msgs)

	assert.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].ID, got[i].ID)
	}
	assert.Equal(t, "second", got[0].Text)
	assert.Equal(t, "fifth", got[3].Text)
}

func TestOldestFirst_OddLength(t *testing.T) {
	msgs := []models.Message{
		{ID: 3}, {ID: 2}, {ID: 1},
	}

	got := oldestFirst(msgs)

	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, uint(2), got[1].ID)
	assert.Equal(t, uint(3), got[2].ID)
}
