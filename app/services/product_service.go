package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordersync/app/models"
	"github.com/shashiranjanraj/ordersync/app/repositories"
)

// ProductInput is a partial product edit. Nil fields are left unchanged.
type ProductInput struct {
	ProductName    *string `json:"product_name"    validate:"nullable,min=1,max=255"`
	ArtworkCode    *string `json:"artwork_code"    validate:"nullable,max=100"`
	CustomerID     *uint   `json:"customer_id"     validate:"nullable,gte=1"`
	PaperTypeID    *uint   `json:"paper_type_id"   validate:"nullable,gte=1"`
	GSMID          *uint   `json:"gsm_id"          validate:"nullable,gte=1"`
	SizeID         *uint   `json:"size_id"         validate:"nullable,gte=1"`
	Dimension      *string `json:"dimension"       validate:"nullable,max=100"`
	Ink            *string `json:"ink"             validate:"nullable,max=100"`
	PlateNo        *string `json:"plate_no"        validate:"nullable,max=100"`
	SpecialEffects *string `json:"special_effects" validate:"nullable,id_list"`
	UPS            *string `json:"ups"             validate:"nullable,max=32"`
}

// Empty reports whether the input changes nothing.
func (in ProductInput) Empty() bool {
	return in == ProductInput{}
}

func (in ProductInput) apply(p *models.Product) {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&p.ProductName, in.ProductName)
	setString(&p.ArtworkCode, in.ArtworkCode)
	setString(&p.Dimension, in.Dimension)
	setString(&p.Ink, in.Ink)
	setString(&p.PlateNo, in.PlateNo)
	setString(&p.SpecialEffects, in.SpecialEffects)

	if in.CustomerID != nil {
		p.CustomerID = in.CustomerID
	}
	if in.PaperTypeID != nil {
		p.PaperTypeID = in.PaperTypeID
	}
	if in.GSMID != nil {
		p.GSMID = in.GSMID
	}
	if in.SizeID != nil {
		p.SizeID = in.SizeID
	}
	if in.UPS != nil {
		p.UPS = in.UPS
	}
}

// ProductService is the product edit surface. Every committed edit is
// followed by a snapshot sync unless the caller defers it to the queue.
type ProductService struct {
	products *repositories.ProductRepository
	sync     *SnapshotService
}

func NewProductService(products *repositories.ProductRepository, sync *SnapshotService) *ProductService {
	return &ProductService{products: products, sync: sync}
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies in and commits it. It does not sync orders.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("product: save %d: %w", id, err)
	}
	return p, nil
}

// UpdateAndSync commits in and then syncs every order of the product. The
// sync reads the product back, so it always sees the committed edit.
func (s *ProductService) UpdateAndSync(ctx context.Context, id uint, in ProductInput, opts SyncOptions) (*models.Product, *SyncReport, error) {
	p, err := s.Update(ctx, id, in)
	if err != nil {
		return nil, nil, err
	}
	rep, err := s.sync.SyncProduct(ctx, p.ID, opts)
	if err != nil {
		return p, rep, err
	}
	// Specs may have been rewritten by the sync.
	if fresh, err := s.Get(ctx, id); err == nil {
		p = fresh
	}
	return p, rep, nil
}
