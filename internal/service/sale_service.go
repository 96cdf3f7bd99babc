package service

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kinthithe/pos-api/internal/config"
	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/repository"
	"github.com/kinthithe/pos-api/internal/utils"
)

// saleLedger is the transactional commit unit for one sale line.
type saleLedger interface {
	RecordSaleUnit(sale *models.Sale, customer *repository.CustomerUpsert) (*models.Sale, error)
}

// productCatalog resolves products for pricing.
type productCatalog interface {
	GetByID(productID string) (*models.Product, error)
}

// saleReader serves receipt and listing lookups.
type saleReader interface {
	GetAll() ([]models.Sale, error)
	GetByPaymentRef(paymentRef string) ([]models.Sale, error)
}

// SaleService prices and commits baskets. One Sale row is created per
// product line; all lines of a basket share a payment reference.
type SaleService struct {
	ledger   saleLedger
	products productCatalog
	sales    saleReader
	store    config.StoreConfig
}

// NewSaleService constructs a SaleService.
func NewSaleService(ledger saleLedger, products productCatalog, sales saleReader, store config.StoreConfig) *SaleService {
	return &SaleService{ledger: ledger, products: products, sales: sales, store: store}
}

// BasketItem is one product line of a checkout request.
type BasketItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CustomerDetails identifies the customer on credit sales or when the
// cashier opts to record loyalty on a cash sale.
type CustomerDetails struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// CheckoutRequest carries one basket through the sale engine.
type CheckoutRequest struct {
	Items          []BasketItem     `json:"items"`
	SaleType       models.SaleType  `json:"saleType"`
	AmountTendered float64          `json:"amountTendered"`
	Customer       *CustomerDetails `json:"customer,omitempty"`
	UserID         string           `json:"-"`
}

// CheckoutResult is the committed basket with its receipt totals.
type CheckoutResult struct {
	PaymentRef string        `json:"paymentRef"`
	Subtotal   float64       `json:"subtotal"`
	VATAmount  float64       `json:"vatAmount"`
	GrandTotal float64       `json:"grandTotal"`
	Change     float64       `json:"change"`
	Sales      []models.Sale `json:"sales"`
}

// pricedLine pairs a basket item with its resolved product.
type pricedLine struct {
	product *models.Product
	qty     int
	total   float64 // pre-VAT line total
	points  int
}

// Checkout validates, prices and commits a basket. Cash baskets settle
// immediately with VAT-inclusive amount_paid and change on the first line;
// credit baskets settle nothing and add pre-VAT debt to the customer;
// mpesa baskets commit with amount_paid = 0 and wait for reconciliation to
// raise it.
func (s *SaleService) Checkout(req *CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, utils.ErrEmptyBasket
	}

	lines := make([]pricedLine, 0, len(req.Items))
	var subtotal float64
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, utils.ErrInvalidQuantity
		}
		product, err := s.products.GetByID(item.ProductID)
		if err != nil {
			return nil, utils.ErrProductNotFound
		}
		// Availability is re-verified at decrement time inside the commit
		// unit; this pre-check just fails fast before any line commits.
		if product.Stock < item.Quantity {
			return nil, utils.ErrInsufficientStock
		}
		total := product.Price * float64(item.Quantity)
		lines = append(lines, pricedLine{
			product: product,
			qty:     item.Quantity,
			total:   total,
			points:  int(math.Floor(total / s.store.LoyaltyDivisor)),
		})
		subtotal += total
	}

	vatAmount := subtotal * (s.store.VATRate / 100)
	grandTotal := subtotal + vatAmount

	var change float64
	if req.SaleType == models.SaleTypeCash {
		if req.AmountTendered < grandTotal {
			return nil, utils.ErrInsufficientTender
		}
		change = req.AmountTendered - grandTotal
	}

	paymentRef := utils.GeneratePaymentRef()

	result := &CheckoutResult{
		PaymentRef: paymentRef,
		Subtotal:   subtotal,
		VATAmount:  vatAmount,
		GrandTotal: grandTotal,
		Change:     change,
	}

	for i, line := range lines {
		sale := &models.Sale{
			ProductID:     line.product.ProductID,
			UserID:        req.UserID,
			Quantity:      line.qty,
			TotalPrice:    line.total,
			SaleType:      req.SaleType,
			PaymentRef:    &paymentRef,
			LoyaltyPoints: line.points,
		}

		// amount_paid is pre-set for cash; credit and mpesa start at zero
		// and are raised by repayment or reconciliation respectively.
		if req.SaleType == models.SaleTypeCash {
			paid := line.total + line.total*(s.store.VATRate/100)
			sale.AmountPaid = &paid
		} else {
			zero := 0.0
			sale.AmountPaid = &zero
		}
		// Change belongs to the basket, not a line; record it once on the
		// first line so aggregations do not double count it.
		if i == 0 {
			sale.ChangeAmount = change
		}

		committed, err := s.ledger.RecordSaleUnit(sale, s.customerUpsert(req, line))
		if err != nil {
			// Lines already committed stay committed; each unit is atomic
			// on its own. Surfacing the failure with the partial receipt
			// lets the cashier retry the remaining lines deliberately.
			log.Error().Err(err).
				Str("payment_ref", paymentRef).
				Str("product_id", line.product.ProductID).
				Int("committed_lines", len(result.Sales)).
				Msg("Basket commit failed partway")
			return result, fmt.Errorf("basket line %d: %w", i+1, err)
		}
		result.Sales = append(result.Sales, *committed)
	}

	log.Info().
		Str("payment_ref", paymentRef).
		Str("sale_type", string(req.SaleType)).
		Float64("grand_total", grandTotal).
		Int("lines", len(result.Sales)).
		Msg("Basket committed")
	return result, nil
}

// customerUpsert builds the per-line customer mutation. Only credit sales
// add debt; loyalty points merge on any sale that names a customer.
func (s *SaleService) customerUpsert(req *CheckoutRequest, line pricedLine) *repository.CustomerUpsert {
	if req.Customer == nil || req.Customer.Phone == "" {
		return nil
	}
	cu := &repository.CustomerUpsert{
		FullName:  req.Customer.FullName,
		Phone:     req.Customer.Phone,
		Address:   req.Customer.Address,
		AddPoints: line.points,
	}
	if req.SaleType == models.SaleTypeCredit {
		cu.AddDebt = line.total
		due := time.Now().Add(s.store.CreditDueAfter)
		cu.DueDate = &due
	}
	return cu
}

// ListSales returns all sales, most recent first.
func (s *SaleService) ListSales() ([]models.Sale, error) {
	return s.sales.GetAll()
}

// Receipt returns the sale lines for one payment reference.
func (s *SaleService) Receipt(paymentRef string) ([]models.Sale, error) {
	return s.sales.GetByPaymentRef(paymentRef)
}

// ExpectedTotal computes the VAT-inclusive amount outstanding for the lines
// under one payment reference, used by the poll loop as its settlement bar.
func (s *SaleService) ExpectedTotal(paymentRef string) (float64, error) {
	sales, err := s.sales.GetByPaymentRef(paymentRef)
	if err != nil {
		return 0, err
	}
	if len(sales) == 0 {
		return 0, utils.ErrChargeNotFound
	}
	var subtotal float64
	for _, sale := range sales {
		subtotal += sale.TotalPrice
	}
	return subtotal + subtotal*(s.store.VATRate/100), nil
}
