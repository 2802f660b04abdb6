package esstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-radar/internal/types"
)

func TestNewScopesIndexToNamespace(t *testing.T) {
	s, err := New("http://localhost:9200", "deal-radar", "Analysis")
	require.NoError(t, err)

	assert.Equal(t, "deal-radar-analysis", s.index)
	assert.Equal(t, "Analysis", s.namespace)
}

func TestRecordIDStableOnIdentity(t *testing.T) {
	a := types.EvidenceRecord{
		Text: "Acme to acquire Widget Co",
		Meta: types.EvidenceMeta{Link: "https://example.com/a", Publisher: "WireOne"},
	}
	b := types.EvidenceRecord{
		Text: "Acme to acquire Widget Co",
		Meta: types.EvidenceMeta{Link: "https://example.com/a", Publisher: "WireTwo"},
	}

	// Identity is (text, link); other metadata must not change the id.
	assert.Equal(t, recordID(a), recordID(b))

	c := types.EvidenceRecord{
		Text: "Acme to acquire Widget Co",
		Meta: types.EvidenceMeta{Link: "https://example.com/other"},
	}
	assert.NotEqual(t, recordID(a), recordID(c))
}
