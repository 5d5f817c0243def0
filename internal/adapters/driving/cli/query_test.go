package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/services"
)

func resetQueryFlags() {
	queryTopK = 0
	queryJSON = false
}

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [text]", queryCmd.Use)
}

func TestQueryCmd_HasFlags(t *testing.T) {
	flag := queryCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
	assert.NotNil(t, queryCmd.Flags().Lookup("json"))
}

func TestQueryCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t, nil)

	_, err := execute(t, "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestQueryCmd_Text(t *testing.T) {
	env := setupTestServices(t, nil)
	defer resetQueryFlags()

	out, err := execute(t, "query", "-k", "2", "where is ORD123")
	require.NoError(t, err)

	assert.Equal(t, []string{"where is ORD123"}, env.retrieval.queries)
	assert.Equal(t, 2, env.retrieval.lastK)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "[1]")
	assert.Contains(t, out, "score 0.870")
	assert.Contains(t, out, "Order ORD123 is Shipped.")
}

func TestQueryCmd_JSON(t *testing.T) {
	setupTestServices(t, nil)
	defer resetQueryFlags()

	out, err := execute(t, "query", "--json", "where is ORD123")
	require.NoError(t, err)

	var res queryResult
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &res))
	assert.Equal(t, "ok", res.Status)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, 1, res.Hits[0].Rank)
	assert.Equal(t, "c1", res.Hits[0].ChunkID)
	assert.InDelta(t, 0.87, res.Hits[0].Score, 1e-9)
	assert.Empty(t, res.Error)
}

func TestQueryCmd_Unavailable(t *testing.T) {
	env := setupTestServices(t, nil)
	env.retrieval.state = domain.StateDegraded
	env.retrieval.outcome = domain.QueryOutcome{Status: domain.OutcomeUnavailable, Err: domain.ErrIndexNotFound}
	defer resetQueryFlags()

	out, err := execute(t, "query", "returns")
	require.NoError(t, err)
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, services.UnavailableMessage)
	assert.Contains(t, out, "index artifact not found")
}

func TestQueryCmd_UnavailableJSON(t *testing.T) {
	env := setupTestServices(t, nil)
	env.retrieval.outcome = domain.QueryOutcome{Status: domain.OutcomeUnavailable, Err: domain.ErrIndexCorrupt}
	defer resetQueryFlags()

	out, err := execute(t, "query", "--json", "returns")
	require.NoError(t, err)

	var res queryResult
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &res))
	assert.Equal(t, "unavailable", res.Status)
	assert.Empty(t, res.Hits)
	assert.Equal(t, "index artifact corrupt", res.Error)
}

func TestQueryCmd_NoResults(t *testing.T) {
	env := setupTestServices(t, nil)
	env.retrieval.outcome = domain.QueryOutcome{Status: domain.OutcomeNoResults}
	defer resetQueryFlags()

	out, err := execute(t, "query", "gift cards")
	require.NoError(t, err)
	assert.Contains(t, out, "no_results")
	assert.Contains(t, out, services.NoResultsMessage)
}
