// Package manifest renders the remote delegate surface of a build as an
// OpenAPI 3.1 document, one path per remote-flagged operation plan.
package manifest

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/opforge/opforge/internal/model"
)

// Generate builds the OpenAPI document for every remote plan in the units.
func Generate(baseURL string, units []*model.GeneratedUnit) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Delegate Host API",
			Description: "Auto-generated remote operation surface produced by opforge.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
		Paths: openapi3.NewPaths(),
	}

	components := openapi3.NewComponents()
	components.SecuritySchemes = openapi3.SecuritySchemes{
		"bearerAuth": &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "JWT",
			},
		},
	}
	doc.Components = &components
	doc.Security = openapi3.SecurityRequirements{{"bearerAuth": {}}}

	for _, unit := range units {
		for _, plan := range unit.RemotePlans() {
			path := fmt.Sprintf("/api/v1/delegate/%s", plan.DelegateID)
			doc.Paths.Set(path, &openapi3.PathItem{Post: operationFor(plan)})
		}
	}
	return doc
}

func operationFor(plan model.OperationPlanModel) *openapi3.Operation {
	request := openapi3.NewObjectSchema()
	request.Properties = openapi3.Schemas{
		"type_name": openapi3.NewStringSchema().NewRef(),
		"operation": openapi3.NewStringSchema().NewRef(),
		"target":    openapi3.NewSchema().NewRef(),
		"args":      argsSchema(plan.Parameters).NewRef(),
	}

	op := openapi3.NewOperation()
	op.OperationID = plan.TypeName + "_" + plan.Name
	op.Summary = fmt.Sprintf("Invoke %s.%s", plan.TypeName, plan.Name)
	op.Description = describe(plan)
	op.Tags = []string{plan.TypeName}
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(request),
	}

	responses := openapi3.NewResponses()
	okSchema := openapi3.NewObjectSchema()
	okSchema.Properties = openapi3.Schemas{"result": openapi3.NewSchema().NewRef()}
	responses.Set("200", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("Invocation result").
			WithJSONSchema(okSchema),
	})
	responses.Set("403", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("Authorization denied"),
	})
	op.Responses = responses
	return op
}

// argsSchema lists one slot per public non-target parameter, in signature
// order — the same positional contract the transport request carries.
func argsSchema(params []model.ParameterDescriptor) *openapi3.Schema {
	schema := openapi3.NewArraySchema()
	schema.Items = openapi3.NewSchema().NewRef()
	var names []string
	for _, p := range params {
		if p.Role == model.RoleTarget {
			continue
		}
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Type))
	}
	if len(names) > 0 {
		schema.Description = "Positional values: " + strings.Join(names, ", ")
	}
	return schema
}

func describe(plan model.OperationPlanModel) string {
	switch {
	case plan.IsSave:
		return "Synthesized save operation; routes between insert, update, and delete from the entity state."
	case plan.IsPreflight:
		return "Pre-flight authorization check; evaluates the bound checks without invoking the operation."
	default:
		return fmt.Sprintf("%s operation.", plan.Kind)
	}
}
