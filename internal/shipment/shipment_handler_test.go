package shipment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/shipment"
	shipmenterrors "go-fleetpay/internal/shipment/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeShipmentService struct {
	shipment.Service
	updateStatusFn func(ctx context.Context, viewer domain.Viewer, id string, req shipment.UpdateStatusRequest) (shipment.UpdateStatusResponse, error)
	exportFn       func(ctx context.Context, viewer domain.Viewer, f shipment.ListFilter) ([]byte, error)
}

func (f *fakeShipmentService) UpdateStatus(ctx context.Context, viewer domain.Viewer, id string, req shipment.UpdateStatusRequest) (shipment.UpdateStatusResponse, error) {
	return f.updateStatusFn(ctx, viewer, id, req)
}

func (f *fakeShipmentService) Export(ctx context.Context, viewer domain.Viewer, fl shipment.ListFilter) ([]byte, error) {
	return f.exportFn(ctx, viewer, fl)
}

func newRouter(h *shipment.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	withUser := func(c *gin.Context) {
		c.Set("user_id", "driver-1")
		c.Set("role", "DRIVER")
	}
	r.PUT("/shipments/:id/status", withUser, h.UpdateStatus)
	r.GET("/shipments/export", withUser, h.Export)
	return r
}

func TestHandler_UpdateStatus(t *testing.T) {
	svc := &fakeShipmentService{
		updateStatusFn: func(ctx context.Context, viewer domain.Viewer, id string, req shipment.UpdateStatusRequest) (shipment.UpdateStatusResponse, error) {
			assert.Equal(t, "driver-1", viewer.UserID)
			assert.Equal(t, domain.RoleDriver, viewer.Role)
			if req.Phase == "End Loading" {
				return shipment.UpdateStatusResponse{}, shipmenterrors.ErrStepNotActive
			}
			return shipment.UpdateStatusResponse{Applied: true, ShipmentID: id, Phase: req.Phase, CurrentStatus: req.Phase}, nil
		},
	}
	router := newRouter(shipment.NewHandler(svc))

	t.Run("applied", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/shipments/s-1/status", strings.NewReader(`{"phase":"Start Loading","latitude":-6.2,"longitude":106.8}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"applied":true`)
	})

	t.Run("inactive step conflicts", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/shipments/s-1/status", strings.NewReader(`{"phase":"End Loading"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"INVALID_STATE"`)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/shipments/s-1/status", strings.NewReader(`{"phase":"Arrival","latitude":123}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Export(t *testing.T) {
	svc := &fakeShipmentService{
		exportFn: func(ctx context.Context, viewer domain.Viewer, f shipment.ListFilter) ([]byte, error) {
			if f.Category == "delayed" {
				return nil, shipmenterrors.ErrNoRows
			}
			return []byte("PK"), nil
		},
	}
	router := newRouter(shipment.NewHandler(svc))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shipments/export", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shipments-")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shipments/export?category=delayed", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
