package console

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCreatorStore struct {
	created []Creator
	updated map[string]Creator
	err     error
}

func (m *memoryCreatorStore) Create(_ context.Context, c Creator) (Creator, error) {
	if m.err != nil {
		return Creator{}, m.err
	}
	c.ID = "new-id"
	m.created = append(m.created, c)
	return c, nil
}

func (m *memoryCreatorStore) Update(_ context.Context, id string, c Creator) (Creator, error) {
	if m.err != nil {
		return Creator{}, m.err
	}
	if m.updated == nil {
		m.updated = map[string]Creator{}
	}
	m.updated[id] = c
	return c, nil
}

func newCreatorEditor(store EditorStore[Creator], toasts Notifier) *Editor[Creator] {
	return NewEditor(EditorOptions[Creator]{
		Store:    store,
		Label:    "Creator",
		ID:       func(c Creator) string { return c.ID },
		Notifier: toasts,
	})
}

func TestEditorBlankNameNeverReachesStore(t *testing.T) {
	store := &memoryCreatorStore{}
	toasts := &toastRecorder{}
	editor := newCreatorEditor(store, toasts)

	require.NoError(t, editor.OpenCreate(Creator{Email: "ana@example.com"}))
	_, err := editor.Save(context.Background())

	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.created)
	assert.Equal(t, EditorOpenCreate, editor.State())
	require.Len(t, toasts.levels, 1)
	assert.Equal(t, ToastWarning, toasts.levels[0])
	assert.Contains(t, toasts.msgs[0], "name")
}

func TestEditorCreateAndUpdateTargets(t *testing.T) {
	store := &memoryCreatorStore{}
	toasts := &toastRecorder{}
	editor := newCreatorEditor(store, toasts)
	ctx := context.Background()

	require.NoError(t, editor.OpenCreate(Creator{}))
	require.True(t, editor.IsCreateMode())
	require.NoError(t, editor.Update(func(c *Creator) {
		c.Name = "Ana"
		c.Email = "ana@example.com"
	}))
	saved, err := editor.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new-id", saved.ID)
	assert.Len(t, store.created, 1)
	assert.Equal(t, EditorClosed, editor.State())

	require.NoError(t, editor.OpenEdit(Creator{ID: "c-1", Name: "Bo", Email: "bo@example.com"}))
	assert.False(t, editor.IsCreateMode())
	_, err = editor.Save(ctx)
	require.NoError(t, err)
	assert.Contains(t, store.updated, "c-1")
	assert.Len(t, store.created, 1)
	assert.Equal(t, []string{"Creator created.", "Creator updated."}, toasts.msgs)
}

func TestEditorDraftDoesNotAliasSource(t *testing.T) {
	editor := newCreatorEditor(&memoryCreatorStore{}, nil)
	row := Creator{ID: "c-1", Name: "Bo", SocialLinks: []string{"https://a.example"}}

	require.NoError(t, editor.OpenEdit(row))
	require.NoError(t, editor.Update(func(c *Creator) {
		c.Name = "Changed"
		c.SocialLinks[0] = "https://b.example"
	}))

	assert.Equal(t, "Bo", row.Name)
	assert.Equal(t, "https://a.example", row.SocialLinks[0])
	draft, open := editor.Draft()
	require.True(t, open)
	assert.Equal(t, "Changed", draft.Name)
}

func TestEditorStoreFailureKeepsDraft(t *testing.T) {
	store := &memoryCreatorStore{err: errors.New("conflict")}
	toasts := &toastRecorder{}
	editor := newCreatorEditor(store, toasts)

	require.NoError(t, editor.OpenEdit(Creator{ID: "c-1", Name: "Bo", Email: "bo@example.com"}))
	_, err := editor.Save(context.Background())
	require.Error(t, err)

	assert.Equal(t, EditorOpenEdit, editor.State())
	draft, open := editor.Draft()
	require.True(t, open)
	assert.Equal(t, "Bo", draft.Name)
	assert.Equal(t, []string{"Could not save creator."}, toasts.msgs)
}

func TestEditorClosedOperations(t *testing.T) {
	editor := newCreatorEditor(&memoryCreatorStore{}, nil)
	_, err := editor.Save(context.Background())
	assert.ErrorIs(t, err, ErrEditorClosed)
	assert.ErrorIs(t, editor.Update(func(*Creator) {}), ErrEditorClosed)

	require.NoError(t, editor.OpenCreate(Creator{Name: "x"}))
	editor.Cancel()
	_, open := editor.Draft()
	assert.False(t, open)
}
