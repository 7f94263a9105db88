package manifest

import (
	"testing"

	"github.com/opforge/opforge/internal/dispatch"
	"github.com/opforge/opforge/internal/model"
)

func testUnits() []*model.GeneratedUnit {
	return []*model.GeneratedUnit{
		{
			TypeName: "Invoice",
			Plans: []model.OperationPlanModel{
				{
					Name: "Approve", TypeName: "Invoice",
					DelegateID: dispatch.DelegateID("Invoice", "Approve"),
					Kind:       model.KindUpdate, IsRemote: true,
					Parameters: []model.ParameterDescriptor{
						{Name: "entity", Type: "Invoice", Role: model.RoleTarget},
						{Name: "comment", Type: "string", Role: model.RoleBusiness},
					},
				},
				{
					Name: "ByID", TypeName: "Invoice",
					DelegateID: dispatch.DelegateID("Invoice", "ByID"),
					Kind:       model.KindFetch, IsRemote: false,
				},
			},
		},
	}
}

func TestGenerate_OnePathPerRemotePlan(t *testing.T) {
	doc := Generate("http://localhost:8080", testUnits())

	if doc.OpenAPI != "3.1.0" {
		t.Errorf("version = %s", doc.OpenAPI)
	}
	if len(doc.Paths.Map()) != 1 {
		t.Fatalf("expected 1 path (remote plans only), got %d", len(doc.Paths.Map()))
	}

	path := "/api/v1/delegate/" + dispatch.DelegateID("Invoice", "Approve")
	item := doc.Paths.Value(path)
	if item == nil || item.Post == nil {
		t.Fatalf("missing POST path %s", path)
	}
	if item.Post.OperationID != "Invoice_Approve" {
		t.Errorf("operation id = %s", item.Post.OperationID)
	}
	if item.Post.RequestBody == nil || !item.Post.RequestBody.Value.Required {
		t.Error("invocation body must be required")
	}
	if item.Post.Responses.Value("403") == nil {
		t.Error("denial response missing")
	}
}

func TestGenerate_SecurityScheme(t *testing.T) {
	doc := Generate("http://localhost:8080", testUnits())

	scheme, ok := doc.Components.SecuritySchemes["bearerAuth"]
	if !ok {
		t.Fatal("bearerAuth scheme missing")
	}
	if scheme.Value.Scheme != "bearer" || scheme.Value.BearerFormat != "JWT" {
		t.Errorf("unexpected scheme %+v", scheme.Value)
	}
	if len(doc.Security) != 1 {
		t.Error("document-level security requirement missing")
	}
}

func TestGenerate_ArgsExcludeTarget(t *testing.T) {
	doc := Generate("http://localhost:8080", testUnits())

	path := "/api/v1/delegate/" + dispatch.DelegateID("Invoice", "Approve")
	op := doc.Paths.Value(path).Post
	request := op.RequestBody.Value.Content.Get("application/json").Schema.Value
	args := request.Properties["args"].Value

	// The target travels in its own field; args describes only the comment.
	if args.Description == "" {
		t.Fatal("args schema should describe the positional slots")
	}
	if want := "comment (string)"; args.Description != "Positional values: "+want {
		t.Errorf("args description = %q", args.Description)
	}
}
