package payroll_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/payroll"
	payrollerrors "go-fleetpay/internal/payroll/errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakePayrollService struct {
	payroll.Service
	generateFn  func(ctx context.Context, viewer domain.Viewer, periodID string) (payroll.GenerateResult, error)
	voidAdjFn   func(ctx context.Context, viewer domain.Viewer, id string, req payroll.VoidRequest) (payroll.AdjustmentResponse, error)
	payslipFn   func(ctx context.Context, viewer domain.Viewer, periodID, userID string) ([]byte, error)
	createPayFn func(ctx context.Context, viewer domain.Viewer, req payroll.CreatePaymentRequest) (payroll.PaymentResponse, error)
}

func (f *fakePayrollService) Generate(ctx context.Context, viewer domain.Viewer, periodID string) (payroll.GenerateResult, error) {
	return f.generateFn(ctx, viewer, periodID)
}

func (f *fakePayrollService) VoidAdjustment(ctx context.Context, viewer domain.Viewer, id string, req payroll.VoidRequest) (payroll.AdjustmentResponse, error) {
	return f.voidAdjFn(ctx, viewer, id, req)
}

func (f *fakePayrollService) Payslip(ctx context.Context, viewer domain.Viewer, periodID, userID string) ([]byte, error) {
	return f.payslipFn(ctx, viewer, periodID, userID)
}

func (f *fakePayrollService) CreatePayment(ctx context.Context, viewer domain.Viewer, req payroll.CreatePaymentRequest) (payroll.PaymentResponse, error) {
	return f.createPayFn(ctx, viewer, req)
}

func newRouter(h *payroll.Handler, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	withUser := func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("role", role)
	}
	r.POST("/payroll/generate", withUser, h.Generate)
	r.GET("/payroll/payslip/:periodID/:userID", withUser, h.Payslip)
	r.DELETE("/adjustments/:id", withUser, h.VoidAdjustment)
	r.POST("/payments", withUser, h.CreatePayment)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

const periodID = "7b0f8a54-3a7e-4c55-9d7a-0f2b7f1f6a10"

func TestHandler_Generate(t *testing.T) {
	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, viewer domain.Viewer, id string) (payroll.GenerateResult, error) {
			assert.Equal(t, "user-1", viewer.UserID)
			if id != periodID {
				return payroll.GenerateResult{}, payrollerrors.ErrPeriodClosed
			}
			return payroll.GenerateResult{PeriodID: id, RowsCreated: 4, CarryOverTotal: decimal.Zero}, nil
		},
	}
	router := newRouter(payroll.NewHandler(svc), "FINANCE")

	w := do(router, http.MethodPost, "/payroll/generate", `{"period_id":"`+periodID+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rows_created":4`)

	w = do(router, http.MethodPost, "/payroll/generate", `{"period_id":"a1e7d0f6-5a7c-4b40-9a63-7a6f5c0b1d22"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INVALID_STATE"`)

	w = do(router, http.MethodPost, "/payroll/generate", `{"period_id":"p1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_VoidRequiresReason(t *testing.T) {
	called := false
	svc := &fakePayrollService{
		voidAdjFn: func(ctx context.Context, viewer domain.Viewer, id string, req payroll.VoidRequest) (payroll.AdjustmentResponse, error) {
			called = true
			return payroll.AdjustmentResponse{ID: id, Status: payroll.StatusVoid}, nil
		},
	}
	router := newRouter(payroll.NewHandler(svc), "FINANCE")

	w := do(router, http.MethodDelete, "/adjustments/a-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)

	w = do(router, http.MethodDelete, "/adjustments/a-1", `{"reason":"typo"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"VOID"`)
}

func TestHandler_CreatePaymentAcceptsNumericAmount(t *testing.T) {
	svc := &fakePayrollService{
		createPayFn: func(ctx context.Context, viewer domain.Viewer, req payroll.CreatePaymentRequest) (payroll.PaymentResponse, error) {
			assert.Equal(t, "1250.5", req.Amount.String())
			return payroll.PaymentResponse{ID: "pay-1", Amount: req.Amount, Status: payroll.StatusCompleted}, nil
		},
	}
	router := newRouter(payroll.NewHandler(svc), "FINANCE")

	body := `{"user_id":"` + periodID + `","period_id":"` + periodID + `","amount":1250.50}`
	w := do(router, http.MethodPost, "/payments", body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandler_Payslip(t *testing.T) {
	svc := &fakePayrollService{
		payslipFn: func(ctx context.Context, viewer domain.Viewer, pid, uid string) ([]byte, error) {
			if viewer.Role.IsCrew() && viewer.UserID != uid {
				return nil, payrollerrors.ErrForbidden
			}
			return []byte("%PDF-1.4"), nil
		},
	}
	router := newRouter(payroll.NewHandler(svc), "DRIVER")

	w := do(router, http.MethodGet, "/payroll/payslip/"+periodID+"/user-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	w = do(router, http.MethodGet, "/payroll/payslip/"+periodID+"/user-2", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
