package venue

import (
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"lockdropd/crypto"
)

func testHolder() crypto.Address {
	buf := make([]byte, crypto.AddressLength)
	buf[0] = 0x7f
	return crypto.NewAddress(crypto.LockPrefix, buf)
}

func TestClientFetchesAmounts(t *testing.T) {
	holder := testHolder()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, holder.String()) {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		switch {
		case strings.Contains(r.URL.Path, "/v1/shares/"):
			fmt.Fprint(w, `{"amount":"800000"}`)
		case strings.Contains(r.URL.Path, "/v1/pending-rewards/"):
			fmt.Fprint(w, `{"amount":"900"}`)
		case strings.Contains(r.URL.Path, "/v1/reward-balance/"):
			fmt.Fprint(w, `{"amount":"0"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	shares, err := client.ShareBalance(holder)
	require.NoError(t, err)
	require.Zero(t, shares.Cmp(big.NewInt(800_000)))

	pending, err := client.PendingRewards(holder)
	require.NoError(t, err)
	require.Zero(t, pending.Cmp(big.NewInt(900)))

	rewards, err := client.RewardBalance(holder)
	require.NoError(t, err)
	require.Zero(t, rewards.Sign())
}

func TestClientRejectsBadResponses(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"malformed amount", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"amount":"not-a-number"}`)
		}},
		{"negative amount", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"amount":"-5"}`)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>`)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client, err := NewClient(server.URL)
			require.NoError(t, err)

			_, err = client.ShareBalance(testHolder())
			require.Error(t, err)
		})
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("   ")
	require.ErrorIs(t, err, errEmptyBaseURL)
}
