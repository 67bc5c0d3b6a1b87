package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-list-sync/internal/model"
	"github.com/iyhunko/product-list-sync/internal/productapi"
	"github.com/iyhunko/product-list-sync/internal/service"
)

// StateEvent is the server-sent event name carrying a StateResponse.
const StateEvent = "state"

// ProductController exposes the product list state and operations to a presentation layer.
type ProductController struct {
	products         *service.ProductListController
	placeholderImage string
}

// NewProductController creates a new ProductController over the given product list controller.
func NewProductController(products *service.ProductListController, placeholderImage string) *ProductController {
	return &ProductController{
		products:         products,
		placeholderImage: placeholderImage,
	}
}

// ProductResponse represents a product as displayed.
type ProductResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	DisplayPrice string `json:"display_price"`
	Image        string `json:"image,omitempty"`
	DisplayImage string `json:"display_image"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// StateResponse represents the full product list state.
type StateResponse struct {
	Products    []ProductResponse `json:"products"`
	Loading     bool              `json:"loading"`
	Form        model.FormState   `json:"form"`
	LastError   string            `json:"last_error,omitempty"`
	Version     uint64            `json:"version"`
	ResyncError string            `json:"resync_error,omitempty"`
}

// ValidateResponse represents the result of validating a draft.
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors model.FieldErrors `json:"errors"`
}

// GetState handles the HTTP GET request for the current state.
func (pc *ProductController) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, pc.toStateResponse(pc.products.Snapshot()))
}

// StreamState streams a state event on connect and after every state change.
// A slow client only ever receives the latest state.
func (pc *ProductController) StreamState(c *gin.Context) {
	updates := make(chan model.Snapshot, 1)
	unsubscribe := pc.products.Subscribe(func(s model.Snapshot) {
		select {
		case updates <- s:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.SSEvent(StateEvent, pc.toStateResponse(pc.products.Snapshot()))
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case s := <-updates:
			c.SSEvent(StateEvent, pc.toStateResponse(s))
			return true
		}
	})
}

// Refresh handles the HTTP POST request for a manual reload.
func (pc *ProductController) Refresh(c *gin.Context) {
	if err := pc.products.LoadAll(c.Request.Context()); err != nil {
		pc.writeError(c, http.StatusOK, err)
		return
	}
	pc.GetState(c)
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id := model.ProductID(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	if err := pc.products.DeleteProduct(c.Request.Context(), id); err != nil {
		pc.writeError(c, http.StatusOK, err)
		return
	}
	pc.GetState(c)
}

// ValidateDraft handles the HTTP POST request for validating a draft without submitting it.
func (pc *ProductController) ValidateDraft(c *gin.Context) {
	var draft model.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs := pc.products.Validate(draft)
	c.JSON(http.StatusOK, ValidateResponse{Valid: errs.Empty(), Errors: errs})
}

// CreateProduct handles the HTTP POST request for creating a new product from a draft.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var draft model.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := pc.products.CreateProduct(c.Request.Context(), draft); err != nil {
		pc.writeError(c, http.StatusCreated, err)
		return
	}
	c.JSON(http.StatusCreated, pc.toStateResponse(pc.products.Snapshot()))
}

// OpenForm handles the HTTP POST request for opening the creation form.
func (pc *ProductController) OpenForm(c *gin.Context) {
	pc.products.OpenForm()
	pc.GetState(c)
}

// CancelForm handles the HTTP POST request for discarding the creation form.
func (pc *ProductController) CancelForm(c *gin.Context) {
	pc.products.CancelForm()
	pc.GetState(c)
}

// UpdateDraft handles the HTTP PUT request for storing the draft being edited.
func (pc *ProductController) UpdateDraft(c *gin.Context) {
	var draft model.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pc.products.UpdateDraft(draft)
	pc.GetState(c)
}

// writeError maps an operation error to a response. A ResyncError means the mutation
// itself went through, so it answers with successStatus and the current state.
func (pc *ProductController) writeError(c *gin.Context, successStatus int, err error) {
	var (
		validationErr *service.ValidationError
		resyncErr     *service.ResyncError
		transportErr  *productapi.TransportError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid product", "errors": validationErr.Fields})
	case errors.As(err, &resyncErr):
		resp := pc.toStateResponse(pc.products.Snapshot())
		resp.ResyncError = resyncErr.Error()
		c.JSON(successStatus, resp)
	case errors.As(err, &transportErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "product API request failed", "op": transportErr.Op})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (pc *ProductController) toStateResponse(s model.Snapshot) StateResponse {
	products := make([]ProductResponse, 0, len(s.Products))
	for _, p := range s.Products {
		products = append(products, pc.toProductResponse(p))
	}
	return StateResponse{
		Products:  products,
		Loading:   s.Loading,
		Form:      s.Form,
		LastError: s.LastError,
		Version:   s.Version,
	}
}

func (pc *ProductController) toProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Price:        string(p.Price),
		DisplayPrice: p.Price.Display(),
		Image:        p.Image,
		DisplayImage: p.DisplayImage(pc.placeholderImage),
		CreatedAt:    p.CreatedAt,
	}
}
