package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/outcome-content/pkg/definitions"
	"github.com/tendant/outcome-content/pkg/itemstore"
	"github.com/tendant/outcome-content/pkg/itemstore/repo/memory"
	"github.com/tendant/outcome-content/pkg/media"
	memorystorage "github.com/tendant/outcome-content/pkg/media/storage/memory"
	"github.com/tendant/outcome-content/pkg/taxonomy"
)

var english = itemstore.MustCulture("en")

type handlerFixture struct {
	store    *memory.Repository
	media    *media.Service
	taxonomy *taxonomy.MemoryManager
	router   http.Handler
}

// setupDefinitionHandlerTest creates a DefinitionHandler over in-memory stores
func setupDefinitionHandlerTest(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		store:    memory.New(),
		media:    media.New(memorystorage.New()),
		taxonomy: taxonomy.NewMemoryManager(),
	}

	repo, err := definitions.New(
		definitions.WithStore(f.store),
		definitions.WithMediaService(f.media),
		definitions.WithTaxonomy(f.taxonomy),
	)
	require.NoError(t, err)

	f.router = NewDefinitionHandler(repo, english).Routes()
	return f
}

func (f *handlerFixture) putDefinition(t *testing.T, name, image string) *itemstore.Item {
	t.Helper()
	group := uuid.New()
	item := itemstore.NewItem(definitions.TemplateOutcomeDefinition, definitions.ContainerOutcomes, name)
	item.SetShared(definitions.FieldOutcomeGroupID, definitions.FormatReference(&group))
	item.SetShared(definitions.FieldAdditionalRegistrationsAreIgnored, "1")
	item.SetShared(definitions.FieldClassificationChannel, "web")
	v := item.AddVersion(english, itemstore.WorkflowStateApproved)
	v.SetField(definitions.FieldName, name)
	v.SetField(definitions.FieldImage, image)
	require.NoError(t, f.store.SaveItem(context.Background(), item))
	return item
}

func (f *handlerFixture) do(method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func slogTo(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestDefinitionHandler_GetDefinition(t *testing.T) {
	f := setupDefinitionHandlerTest(t)
	item := f.putDefinition(t, "Purchase", "")

	t.Run("Success", func(t *testing.T) {
		w := f.do(http.MethodGet, "/definitions/"+item.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp DefinitionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, item.ID.String(), resp.ID)
		assert.Equal(t, "en", resp.Culture)
		assert.Equal(t, "Purchase", resp.Name)
		assert.NotEmpty(t, resp.GroupID)
		assert.True(t, resp.AdditionalRegistrationsAreIgnored)
		assert.False(t, resp.IsMonetaryValueApplicable)
		assert.Equal(t, "web", resp.Classifications[definitions.FieldClassificationChannel.String()])
	})

	t.Run("NotLocalized", func(t *testing.T) {
		w := f.do(http.MethodGet, "/definitions/"+item.ID.String()+"?localized=false", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp DefinitionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "", resp.Name)
	})

	t.Run("OtherCulture", func(t *testing.T) {
		w := f.do(http.MethodGet, "/definitions/"+item.ID.String()+"?culture=da", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decodeError(t, w).Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		w := f.do(http.MethodGet, "/definitions/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_argument", decodeError(t, w).Code)
	})

	t.Run("InvalidCulture", func(t *testing.T) {
		w := f.do(http.MethodGet, "/definitions/"+item.ID.String()+"?culture=%21%21", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidLocalized", func(t *testing.T) {
		w := f.do(http.MethodGet, "/definitions/"+item.ID.String()+"?localized=perhaps", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDefinitionHandler_ListDefinitions(t *testing.T) {
	f := setupDefinitionHandlerTest(t)
	f.putDefinition(t, "Purchase", "")
	f.putDefinition(t, "Download", "")

	w := f.do(http.MethodGet, "/definitions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []DefinitionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Download", resp[0].Name)

	w = f.do(http.MethodGet, "/definitions?culture=da", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestDefinitionHandler_GetImage(t *testing.T) {
	ctx := context.Background()
	f := setupDefinitionHandlerTest(t)

	img := itemstore.NewItem(media.TemplateUnversionedImage, uuid.Nil, "logo")
	require.NoError(t, f.media.Attach(ctx, img, "logo.png", "image/png", []byte("\x89PNG")))
	img.AddVersion(itemstore.InvariantCulture, itemstore.WorkflowStateApproved)
	require.NoError(t, f.store.SaveItem(ctx, img))

	withImage := f.putDefinition(t, "Purchase", definitions.FormatReference(&img.ID))
	withoutImage := f.putDefinition(t, "Download", "")
	dangling := uuid.New()
	broken := f.putDefinition(t, "Broken", dangling.String())

	t.Run("Found", func(t *testing.T) {
		w := f.do(http.MethodGet, "/definitions/"+withImage.ID.String()+"/image", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "4", w.Header().Get("Content-Length"))
		assert.Equal(t, "\x89PNG", w.Body.String())
	})

	t.Run("NoImage", func(t *testing.T) {
		w := f.do(http.MethodGet, "/definitions/"+withoutImage.ID.String()+"/image", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("MissingDefinition", func(t *testing.T) {
		missing := uuid.New()
		w := f.do(http.MethodGet, "/definitions/"+missing.String()+"/image", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, decodeError(t, w).Message, missing.String())
	})

	t.Run("ConsistencyFault", func(t *testing.T) {
		w := f.do(http.MethodGet, "/definitions/"+broken.ID.String()+"/image", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "consistency_fault", body.Code)
		assert.NotContains(t, body.Message, dangling.String())
	})
}

func TestDefinitionHandler_ImageWrites(t *testing.T) {
	f := setupDefinitionHandlerTest(t)
	item := f.putDefinition(t, "Purchase", "")

	w := f.do(http.MethodPut, "/definitions/"+item.ID.String()+"/image", []byte("png"))
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "not_supported", decodeError(t, w).Code)

	w = f.do(http.MethodDelete, "/definitions/"+item.ID.String()+"/image", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	t.Run("OversizedBody", func(t *testing.T) {
		w := f.do(http.MethodPut, "/definitions/"+item.ID.String()+"/image", bytes.Repeat([]byte{0xff}, 11<<20))
		assert.Equal(t, http.StatusNotImplemented, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		assert.Equal(t, "not_supported", decodeError(t, w).Code)
	})
}

func TestDefinitionHandler_OutcomeTypes(t *testing.T) {
	f := setupDefinitionHandlerTest(t)
	revenue := uuid.New()
	f.taxonomy.Put(revenue, uuid.Nil, itemstore.InvariantCulture, "Revenue")

	w := f.do(http.MethodGet, "/outcome-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []OutcomeTypeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []OutcomeTypeResponse{{ID: revenue.String(), Name: "Revenue"}}, list)

	w = f.do(http.MethodGet, "/outcome-types/"+revenue.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var one OutcomeTypeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &one))
	assert.Equal(t, "Revenue", one.Name)

	missing := uuid.New()
	w = f.do(http.MethodGet, "/outcome-types/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Contains(t, body.Message, "outcome type "+missing.String())
	assert.NotContains(t, body.Message, "definition")
}

func TestDefinitionHandler_TaxonomyUnavailable(t *testing.T) {
	repo, err := definitions.New(definitions.WithStore(memory.New()))
	require.NoError(t, err)
	router := NewDefinitionHandler(repo, english).Routes()

	req := httptest.NewRequest(http.MethodGet, "/outcome-types", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMiddleware(t *testing.T) {
	f := setupDefinitionHandlerTest(t)
	item := f.putDefinition(t, "Purchase", "")

	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	router := chi.NewRouter()
	router.Use(RequestIDMiddleware, RecoveryMiddleware, metrics.Middleware)
	router.Mount("/", f.router)
	var handler http.Handler = router

	req := httptest.NewRequest(http.MethodGet, "/definitions/"+item.ID.String(), nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "/definitions/{id}", "200")))

	t.Run("RequestIDInErrors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/definitions/"+uuid.New().String(), nil)
		req.Header.Set("X-Request-ID", "req-2")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "req-2", decodeError(t, w).RequestID)
	})

	t.Run("Recovery", func(t *testing.T) {
		panicky := RequestIDMiddleware(RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})))
		w := httptest.NewRecorder()
		panicky.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), "internal_error"))
	})

	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		logged := LoggingMiddleware(slogTo(&buf))(f.router)
		w := httptest.NewRecorder()
		logged.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/definitions", nil))
		assert.Contains(t, buf.String(), "status=200")
		assert.Contains(t, buf.String(), "path=/definitions")
	})
}
