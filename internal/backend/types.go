package backend

import (
	"bytes"
	"strings"
)

// ManufacturerRef is the manufacturer slot embedded in a product. The
// backend emits it either as a bare id string or as an embedded
// {_id, name} object depending on the endpoint; both decode into this one
// shape so views never resolve ids themselves.
type ManufacturerRef struct {
	ID   string
	Name string
}

func (m *ManufacturerRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = ManufacturerRef{}
		return nil
	}
	if data[0] == '"' {
		m.Name = ""
		return json.Unmarshal(data, &m.ID)
	}
	var obj struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	m.ID, m.Name = obj.ID, obj.Name
	return nil
}

func (m ManufacturerRef) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return "Unknown"
}

// Product mirrors the backend product document.
type Product struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Manufacturer ManufacturerRef `json:"manufacturer"`
	Category     string          `json:"category"`
	Price        float64         `json:"price"`
	Description  string          `json:"description"`
	Images       []string        `json:"images"`
	MainMaterial string          `json:"mainmaterial"`
	OS           string          `json:"os"`
	InStock      bool            `json:"varastossa"`
	Quantity     int             `json:"quantity"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
	UserID       string          `json:"user_id"`
}

// DisplayImages drops the empty-string placeholders the backend stores for
// unfilled image slots.
func (p *Product) DisplayImages() []string {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if strings.TrimSpace(img) != "" {
			images = append(images, img)
		}
	}
	return images
}

func (p *Product) FirstImage() string {
	if imgs := p.DisplayImages(); len(imgs) > 0 {
		return imgs[0]
	}
	return ""
}

// ProductInput is the write-side payload; manufacturer is always sent as a
// bare id string, which is what the backend stores.
type ProductInput struct {
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Category     string   `json:"category"`
	Price        float64  `json:"price"`
	Description  string   `json:"description"`
	Images       []string `json:"images"`
	MainMaterial string   `json:"mainmaterial"`
	OS           string   `json:"os"`
	InStock      bool     `json:"varastossa"`
	Quantity     int      `json:"quantity"`
}

type Manufacturer struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
