package webui

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/catalogkit/webcatalog/internal/backend"
	"github.com/catalogkit/webcatalog/internal/webserver"
)

type productPayload struct {
	Name         string   `form:"name" validate:"required,min=1,max=200"`
	Manufacturer string   `form:"manufacturer"`
	Category     string   `form:"category"`
	Price        float64  `form:"price" validate:"gte=0"`
	Description  string   `form:"description"`
	Images       []string `form:"images"`
	MainMaterial string   `form:"mainmaterial"`
	OS           string   `form:"os"`
	InStock      bool     `form:"varastossa"`
	Quantity     int      `form:"quantity" validate:"gte=0"`
}

func (p *productPayload) toInput() backend.ProductInput {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if strings.TrimSpace(img) != "" {
			images = append(images, strings.TrimSpace(img))
		}
	}
	return backend.ProductInput{
		Name:         strings.TrimSpace(p.Name),
		Manufacturer: p.Manufacturer,
		Category:     strings.TrimSpace(p.Category),
		Price:        p.Price,
		Description:  p.Description,
		Images:       images,
		MainMaterial: strings.TrimSpace(p.MainMaterial),
		OS:           strings.TrimSpace(p.OS),
		InStock:      p.InStock,
		Quantity:     p.Quantity,
	}
}

func registerProductRoutes() {
	webserver.UiGET("/products", listProducts)
	webserver.AuthGET("/products/new", newProductPage)
	webserver.AuthPOST("/products/new", createProduct)
	webserver.UiGET("/products/:id", productDetail)
	webserver.AuthGET("/products/:id/edit", editProductPage)
	webserver.AuthPOST("/products/:id/edit", updateProduct)
	webserver.AuthPOST("/products/:id/delete", deleteProduct)
}

// productSummary is the footer line under the list: how many products, the
// mean price, and how many units are in stock overall.
type productSummary struct {
	Count      int
	MeanPrice  float64
	TotalUnits int
}

func summarize(products []backend.Product) productSummary {
	summary := productSummary{Count: len(products)}
	if len(products) == 0 {
		return summary
	}
	prices := make([]float64, 0, len(products))
	for _, p := range products {
		prices = append(prices, p.Price)
		summary.TotalUnits += p.Quantity
	}
	if mean, err := stats.Mean(prices); err == nil {
		summary.MeanPrice = mean
	}
	return summary
}

func listProducts(c echo.Context) error {
	products, err := GetApp(c).API().ListProducts(c.Request().Context())
	if err != nil {
		return failBackend(c, err, "Failed to load products", "/")
	}
	state := CurrentSession(c)

	editable := make(map[string]bool, len(products))
	for _, p := range products {
		editable[p.ID] = canModify(state, p.UserID)
	}

	return render(c, http.StatusOK, "product_list", map[string]interface{}{
		"Title":    "Product List",
		"Products": products,
		"Editable": editable,
		"Summary":  summarize(products),
	})
}

func productDetail(c echo.Context) error {
	product, err := GetApp(c).API().GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failBackend(c, err, "Failed to load the product", "/products")
	}
	// The detail response omits the owner id, so the controls render for
	// any session when ownership is unknown; mutations are still rejected
	// by the backend for non-owners.
	state := CurrentSession(c)
	return render(c, http.StatusOK, "product_detail", map[string]interface{}{
		"Title":     product.Name,
		"Product":   product,
		"CanModify": state.LoggedIn && (product.UserID == "" || canModify(state, product.UserID)),
	})
}

func newProductPage(c echo.Context) error {
	manufacturers, err := GetApp(c).API().ListManufacturers(c.Request().Context())
	if err != nil {
		return failBackend(c, err, "Failed to load manufacturers", "/products")
	}
	return render(c, http.StatusOK, "product_form", map[string]interface{}{
		"Title":         "Create Product",
		"Mode":          "create",
		"Action":        "/products/new",
		"Product":       &backend.Product{},
		"Manufacturers": manufacturers,
	})
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return flashRedirect(c, "danger", "Unable to read the product form", "/products/new")
	}
	if err := c.Validate(&payload); err != nil {
		return flashRedirect(c, "danger", "Name is required; price and quantity must not be negative", "/products/new")
	}

	state := CurrentSession(c)
	id, err := GetApp(c).API().CreateProduct(c.Request().Context(), state.Token, payload.toInput())
	if err != nil {
		return failBackend(c, err, "Failed to create the product", "/products/new")
	}
	return flashRedirect(c, "success", "Product created", "/products/"+id)
}

func editProductPage(c echo.Context) error {
	id := c.Param("id")
	api := GetApp(c).API()

	// The form needs the product and the manufacturer choices; neither
	// depends on the other, so fetch them together.
	var (
		product       *backend.Product
		manufacturers []backend.Manufacturer
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		product, err = api.GetProduct(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		manufacturers, err = api.ListManufacturers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return failBackend(c, err, "Failed to load the product", "/products")
	}

	// Single-product responses omit the owner id; ownership is enforced
	// here only when it is known, the backend rejects the update otherwise.
	if product.UserID != "" && !canModify(CurrentSession(c), product.UserID) {
		return flashRedirect(c, "danger", "You are not authorized for this action.", "/products/"+id)
	}

	return render(c, http.StatusOK, "product_form", map[string]interface{}{
		"Title":         "Edit Product",
		"Mode":          "edit",
		"Action":        "/products/" + id + "/edit",
		"Product":       product,
		"Manufacturers": manufacturers,
	})
}

func updateProduct(c echo.Context) error {
	id := c.Param("id")
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return flashRedirect(c, "danger", "Unable to read the product form", "/products/"+id+"/edit")
	}
	if err := c.Validate(&payload); err != nil {
		return flashRedirect(c, "danger", "Name is required; price and quantity must not be negative", "/products/"+id+"/edit")
	}

	state := CurrentSession(c)
	if err := GetApp(c).API().UpdateProduct(c.Request().Context(), state.Token, id, payload.toInput()); err != nil {
		return failBackend(c, err, "Failed to update the product", "/products/"+id+"/edit")
	}
	return flashRedirect(c, "success", "Product updated", "/products/"+id)
}

// deleteProduct removes the product and redirects back to the list, which
// re-fetches from the backend; there is no locally-cached list to patch.
func deleteProduct(c echo.Context) error {
	id := c.Param("id")
	state := CurrentSession(c)
	if err := GetApp(c).API().DeleteProduct(c.Request().Context(), state.Token, id); err != nil {
		return failBackend(c, err, "Failed to delete the product", "/products")
	}
	return flashRedirect(c, "success", "Product deleted", "/products")
}
