package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidState(t *testing.T) {
	for _, s := range []string{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected} {
		assert.True(t, ValidState(s), s)
	}

	// APPROVED is a terminal status, not a list filter.
	assert.False(t, ValidState(StatusApproved))
	assert.False(t, ValidState(""))
	assert.False(t, ValidState("all"))
}

func TestUserPatchApply(t *testing.T) {
	user := User{Name: "Alice", Email: "alice@example.com"}

	name := "Alice B"
	UserPatch{Name: &name}.Apply(&user)
	assert.Equal(t, "Alice B", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)

	email := "new@example.com"
	UserPatch{Email: &email}.Apply(&user)
	assert.Equal(t, "Alice B", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestItemPatchApply(t *testing.T) {
	item := Item{Name: "Drill", Description: "old", Available: true}

	available := false
	description := "new"
	ItemPatch{Description: &description, Available: &available}.Apply(&item)

	assert.Equal(t, "Drill", item.Name)
	assert.Equal(t, "new", item.Description)
	assert.False(t, item.Available)
}
