package omdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-movie-etl/internal/adapter"
	"github.com/feral-file/ff-movie-etl/internal/mocks"
	"github.com/feral-file/ff-movie-etl/internal/providers/omdb"
)

const testURL = "http://omdb.test/"

type testClientMocks struct {
	ctrl       *gomock.Controller
	httpClient *mocks.MockHTTPClient
	client     omdb.Client
}

func setupTestClient(t *testing.T, apiKey string) *testClientMocks {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)

	return &testClientMocks{
		ctrl:       ctrl,
		httpClient: httpClient,
		client:     omdb.NewClient(httpClient, testURL, apiKey, adapter.NewJSON()),
	}
}

func intPtr(v int) *int {
	return &v
}

func TestOMDbClient_Lookup_Found(t *testing.T) {
	m := setupTestClient(t, "secret")
	defer m.ctrl.Finish()

	body := []byte(`{"Title":"Toy Story","Year":"1995","Director":"John Lasseter","Plot":"A cowboy doll...","BoxOffice":"$223,225,679","imdbID":"tt0114709","Response":"True"}`)

	m.httpClient.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, rawURL string, _ map[string]string) (*adapter.HTTPResponse, error) {
			u, err := url.Parse(rawURL)
			require.NoError(t, err)
			assert.Equal(t, "omdb.test", u.Host)
			assert.Equal(t, "secret", u.Query().Get("apikey"))
			assert.Equal(t, "Toy Story", u.Query().Get("t"))
			assert.Equal(t, "1995", u.Query().Get("y"))
			return &adapter.HTTPResponse{StatusCode: http.StatusOK, Body: body}, nil
		})

	resp, err := m.client.Lookup(context.Background(), "Toy Story", intPtr(1995))
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.True(t, resp.Found())
	assert.Equal(t, "tt0114709", resp.ImdbID)
	assert.Equal(t, "John Lasseter", resp.Director)
	assert.Equal(t, "$223,225,679", resp.BoxOffice)
	assert.Equal(t, body, resp.Raw)
}

func TestOMDbClient_Lookup_NoYear(t *testing.T) {
	m := setupTestClient(t, "secret")
	defer m.ctrl.Finish()

	m.httpClient.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, rawURL string, _ map[string]string) (*adapter.HTTPResponse, error) {
			u, err := url.Parse(rawURL)
			require.NoError(t, err)
			assert.Equal(t, "Heat", u.Query().Get("t"))
			assert.False(t, u.Query().Has("y"))
			return &adapter.HTTPResponse{StatusCode: http.StatusOK, Body: []byte(`{"Response":"False","Error":"Movie not found!"}`)}, nil
		})

	resp, err := m.client.Lookup(context.Background(), "Heat", nil)
	require.NoError(t, err)
	assert.False(t, resp.Found())
	assert.Equal(t, "Movie not found!", resp.Error)
}

func TestOMDbClient_Lookup_Errors(t *testing.T) {
	tests := []struct {
		name         string
		resp         *adapter.HTTPResponse
		httpErr      error
		expectedErr  error
		expectedBody []byte
	}{
		{
			name:        "network failure",
			httpErr:     errors.New("dial tcp: connection refused"),
			expectedErr: omdb.ErrTransport,
		},
		{
			name:        "non-200 status",
			resp:        &adapter.HTTPResponse{StatusCode: http.StatusServiceUnavailable, Body: []byte("unavailable")},
			expectedErr: omdb.ErrTransport,
		},
		{
			name:         "undecodable body",
			resp:         &adapter.HTTPResponse{StatusCode: http.StatusOK, Body: []byte("<html>")},
			expectedErr:  omdb.ErrMalformedResponse,
			expectedBody: []byte("<html>"),
		},
		{
			name:         "missing discriminator",
			resp:         &adapter.HTTPResponse{StatusCode: http.StatusOK, Body: []byte(`{"Title":"Heat"}`)},
			expectedErr:  omdb.ErrMalformedResponse,
			expectedBody: []byte(`{"Title":"Heat"}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setupTestClient(t, "secret")
			defer m.ctrl.Finish()

			m.httpClient.EXPECT().
				Get(gomock.Any(), gomock.Any(), gomock.Nil()).
				Return(tt.resp, tt.httpErr)

			resp, err := m.client.Lookup(context.Background(), "Heat", intPtr(1995))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expectedErr))
			assert.Nil(t, resp)

			var malformed *omdb.MalformedResponseError
			if tt.expectedBody != nil {
				require.True(t, errors.As(err, &malformed))
				assert.Equal(t, tt.expectedBody, malformed.Body)
			} else {
				assert.False(t, errors.As(err, &malformed))
			}
		})
	}
}

func TestOMDbClient_Lookup_NoAPIKey(t *testing.T) {
	m := setupTestClient(t, "")
	defer m.ctrl.Finish()

	resp, err := m.client.Lookup(context.Background(), "Heat", nil)
	assert.ErrorIs(t, err, omdb.ErrNoAPIKey)
	assert.Nil(t, resp)
}

func TestField(t *testing.T) {
	assert.Nil(t, omdb.Field(""))
	assert.Nil(t, omdb.Field("N/A"))
	assert.Nil(t, omdb.Field("  "))

	v := omdb.Field(" John Lasseter ")
	require.NotNil(t, v)
	assert.Equal(t, "John Lasseter", *v)
}

func TestOMDbClient_Lookup_DecodeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	json := mocks.NewMockJSON(ctrl)
	client := omdb.NewClient(httpClient, testURL, "secret", json)

	body := []byte(`{"Response":"True"}`)
	httpClient.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Nil()).
		Return(&adapter.HTTPResponse{StatusCode: http.StatusOK, Body: body}, nil)
	json.EXPECT().Unmarshal(body, gomock.Any()).Return(errors.New("unexpected EOF"))

	resp, err := client.Lookup(context.Background(), "Heat", nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, omdb.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestOMDbClient_InvalidURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := omdb.NewClient(mocks.NewMockHTTPClient(ctrl), "://bad", "secret", adapter.NewJSON())
	resp, err := client.Lookup(context.Background(), "Heat", nil)
	assert.Nil(t, resp)
	assert.Error(t, err)
}
