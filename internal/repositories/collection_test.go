// file: internal/repositories/collection_test.go
package repositories

import (
	"testing"

	"badgehub/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCollectionRequiresDatabase(t *testing.T) {
	collection, err := NewCollection(nil, zap.NewNop())

	require.Error(t, err)
	assert.Nil(t, collection)
}

func TestNewCollectionWiresEveryRepository(t *testing.T) {
	collection, err := NewCollection(&database.Manager{}, zap.NewNop())

	require.NoError(t, err)
	assert.NotNil(t, collection.Badge)
	assert.NotNil(t, collection.Submission)
	assert.NotNil(t, collection.Assessment)
	assert.NotNil(t, collection.Progress)
	assert.NotNil(t, collection.Award)
	assert.NotNil(t, collection.Project)
	assert.NotNil(t, collection.User)
	assert.NotNil(t, collection.DB())
}
