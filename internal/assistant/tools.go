package assistant

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

type searchProductsArgs struct {
	Query string `json:"query" jsonschema_description:"Free-text product search query"`
}

type createOrderArgs struct {
	ProductRef string `json:"product_ref" jsonschema_description:"Product id, product name, or an ordinal reference into the last shown list such as '#2' or '2nd'"`
	Quantity   int    `json:"quantity,omitempty" jsonschema_description:"Requested quantity, defaults to 1"`
	Email      string `json:"email,omitempty" jsonschema_description:"Customer email if stated in the conversation"`
	Name       string `json:"name,omitempty" jsonschema_description:"Customer name if stated in the conversation"`
}

type getOrdersArgs struct {
	Email string `json:"email,omitempty" jsonschema_description:"Customer email if stated in the conversation"`
}

type getRecommendationsArgs struct {
	Category string `json:"category,omitempty" jsonschema_description:"Optional weapon category: pistol, explosive, melee, blade, launcher, crossbow"`
}

// DefineTools registers the four storefront operations with the model
// runtime and returns their refs for generate calls. Each handler pulls
// the claimed session out of the request context; the model runtime only
// threads a context through.
func DefineTools(g *genkit.Genkit, ops *Ops) []ai.ToolRef {
	search := genkit.DefineTool(g, "search_products",
		"Search the weapon catalog by free text. Returns matching products and establishes the numbered list for ordinal references.",
		func(toolCtx *ai.ToolContext, input searchProductsArgs) (Result, error) {
			sess := sessionFromContext(toolCtx.Context)
			if sess == nil {
				return failure("", "세션을 찾을 수 없어요."), nil
			}
			return ops.SearchProducts(toolCtx.Context, sess, input.Query), nil
		})

	createOrder := genkit.DefineTool(g, "create_order",
		"Create an order for one product and open a pending payment. Never invent an email or name; pass only values the customer actually stated.",
		func(toolCtx *ai.ToolContext, input createOrderArgs) (Result, error) {
			sess := sessionFromContext(toolCtx.Context)
			if sess == nil {
				return failure("", "세션을 찾을 수 없어요."), nil
			}
			return ops.CreateOrder(toolCtx.Context, sess, CreateOrderArgs{
				ProductRef: input.ProductRef,
				Quantity:   input.Quantity,
				Email:      input.Email,
				Name:       input.Name,
			}), nil
		})

	getOrders := genkit.DefineTool(g, "get_orders",
		"List the customer's orders, most recent first.",
		func(toolCtx *ai.ToolContext, input getOrdersArgs) (Result, error) {
			sess := sessionFromContext(toolCtx.Context)
			if sess == nil {
				return failure("", "세션을 찾을 수 없어요."), nil
			}
			return ops.GetOrders(toolCtx.Context, sess, input.Email), nil
		})

	recommend := genkit.DefineTool(g, "get_recommendations",
		"Recommend up to three products, optionally within one category. The selection becomes the numbered list for ordinal references.",
		func(toolCtx *ai.ToolContext, input getRecommendationsArgs) (Result, error) {
			sess := sessionFromContext(toolCtx.Context)
			if sess == nil {
				return failure("", "세션을 찾을 수 없어요."), nil
			}
			return ops.GetRecommendations(toolCtx.Context, sess, input.Category), nil
		})

	return []ai.ToolRef{search, createOrder, getOrders, recommend}
}
