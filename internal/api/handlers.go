package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"trading-journal-go/internal/models"
)

func (s *Server) listHoldings(c *gin.Context) {
	ctx, cancel := s.storeContext(c)
	defer cancel()

	rows, err := s.store.ListHoldings(ctx)
	if err != nil {
		s.internalError("ListHoldings", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch holdings"})
		return
	}
	if rows == nil {
		rows = []models.Holding{}
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) listPositions(c *gin.Context) {
	ctx, cancel := s.storeContext(c)
	defer cancel()

	rows, err := s.store.ListPositions(ctx)
	if err != nil {
		s.internalError("ListPositions", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch positions"})
		return
	}
	if rows == nil {
		rows = []models.Position{}
	}
	c.JSON(http.StatusOK, rows)
}

// orderRequest is the body of POST /newOrder.
type orderRequest struct {
	Name  string  `json:"name" binding:"required"`
	Qty   float64 `json:"qty" binding:"required,gt=0"`
	Price float64 `json:"price" binding:"gte=0"`
	Mode  string  `json:"mode" binding:"required,oneof=BUY SELL"`
}

func (s *Server) newOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Rejected order", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order: " + validationMessage(err)})
		return
	}

	ctx, cancel := s.storeContext(c)
	defer cancel()

	order := models.Order{Name: req.Name, Qty: req.Qty, Price: req.Price, Mode: req.Mode}
	if err := s.store.CreateOrder(ctx, &order); err != nil {
		s.internalError("CreateOrder", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save order"})
		return
	}
	s.logger.Info("Order saved", zap.String("id", order.ID.Hex()), zap.String("name", order.Name), zap.String("mode", order.Mode))
	c.JSON(http.StatusOK, gin.H{"message": "Order saved!"})
}

func (s *Server) listOrders(c *gin.Context) {
	ctx, cancel := s.storeContext(c)
	defer cancel()

	rows, err := s.store.ListOrders(ctx)
	if err != nil {
		s.internalError("ListOrders", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching orders"})
		return
	}
	if rows == nil {
		rows = []models.Order{}
	}
	c.JSON(http.StatusOK, rows)
}

// validationMessage turns binding errors into a short client-facing reason.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "malformed body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "oneof":
			parts = append(parts, field+" must be one of "+fe.Param())
		default:
			parts = append(parts, field+" must be "+fe.Tag()+" "+fe.Param())
		}
	}
	return strings.Join(parts, ", ")
}
