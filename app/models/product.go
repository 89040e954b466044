package models

// Product is an inventory item. Favorite defaults to false on creation.
type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Amount      int     `gorm:"not null" json:"amount"`
	Price       float64 `gorm:"not null" json:"price"`
	Description *string `gorm:"type:text" json:"description"`
	Favorite    bool    `gorm:"not null;default:false" json:"favorite"`
}

func (Product) TableName() string { return "products" }

// ProductInput is the body accepted when creating a product. Amount and
// Price are pointers so that an explicit zero is told apart from a
// missing field.
type ProductInput struct {
	Name        string   `json:"name"        validate:"required"`
	Amount      *int     `json:"amount"      validate:"required"`
	Price       *float64 `json:"price"       validate:"required"`
	Description *string  `json:"description"`
}

// ToProduct builds an unsaved Product from a validated input.
func (in ProductInput) ToProduct() Product {
	p := Product{Name: in.Name, Description: in.Description}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	return p
}
