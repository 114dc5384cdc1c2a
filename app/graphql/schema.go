// Package graphql exposes the product listing and monthly statistics as a
// GraphQL query schema backed by the same services as the REST API.
package graphql

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/salesdash/app/models"
	"github.com/shashiranjanraj/salesdash/app/services"
	pkggraphql "github.com/shashiranjanraj/salesdash/pkg/graphql"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"title":       &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"description": &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"image":       &graphql.Field{Type: graphql.String},
		"sold":        &graphql.Field{Type: graphql.Boolean},
		"dateOfSale": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if prod, ok := p.Source.(models.Product); ok {
					return prod.DateOfSale.UTC().Format(time.RFC3339), nil
				}
				return nil, nil
			},
		},
	},
})

var productPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductPage",
	Fields: graphql.Fields{
		"products": &graphql.Field{Type: graphql.NewList(productType)},
		"total":    &graphql.Field{Type: graphql.Int},
	},
})

var priceRangeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PriceRange",
	Fields: graphql.Fields{
		"priceRange": &graphql.Field{Type: graphql.String},
		"count":      &graphql.Field{Type: graphql.Int},
	},
})

var statisticsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Statistics",
	Fields: graphql.Fields{
		"totalSaleAmount":   &graphql.Field{Type: graphql.Float},
		"totalSoldItems":    &graphql.Field{Type: graphql.Int},
		"totalNotSoldItems": &graphql.Field{Type: graphql.Int},
		"priceDistribution": &graphql.Field{Type: graphql.NewList(priceRangeType)},
	},
})

// NewSchema builds the query schema over the given services.
func NewSchema(products *services.ProductService, statistics *services.StatisticsService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: productPageType,
				Args: graphql.FieldConfigArgument{
					"page":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: services.DefaultPage},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: services.DefaultLimit},
					"search": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := services.ProductQuery{
						Page:   p.Args["page"].(int),
						Limit:  p.Args["limit"].(int),
						Search: p.Args["search"].(string),
					}
					return products.List(p.Context, q)
				},
			},
			"statisticsByMonth": &graphql.Field{
				Type: statisticsType,
				Args: graphql.FieldConfigArgument{
					"month": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return statistics.ByMonth(p.Context, p.Args["month"].(int))
				},
			},
		},
	})

	return pkggraphql.NewSchema(query)
}
