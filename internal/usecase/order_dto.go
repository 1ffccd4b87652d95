package usecase

import (
	"littlelemon/internal/domain/model"
)

const dateLayout = "2006-01-02"

type OrderItemOutput struct {
	MenuItemID int64  `json:"menuitem"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	Price      string `json:"price"`
}

type OrderOutput struct {
	ID           int64             `json:"id"`
	User         int64             `json:"user"`
	DeliveryCrew *int64            `json:"delivery_crew"`
	Status       string            `json:"status"`
	Total        string            `json:"total"`
	Date         string            `json:"date"`
	OrderItems   []OrderItemOutput `json:"order_items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.StringFixed(2),
			Price:      it.LinePrice.StringFixed(2),
		})
	}

	return OrderOutput{
		ID:           o.ID,
		User:         o.UserID,
		DeliveryCrew: o.DeliveryCrewID,
		Status:       string(o.Status),
		Total:        o.Total.StringFixed(2),
		Date:         o.PlacedAt.Format(dateLayout),
		OrderItems:   outItems,
	}
}
