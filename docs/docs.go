// Package docs registers the swagger document served at /docs/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/billing/payments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "List payments",
                "parameters": [
                    {"type": "string", "description": "Provider key", "name": "provider", "in": "query"},
                    {"type": "string", "description": "Canonical status", "name": "status", "in": "query"},
                    {"type": "string", "format": "uuid", "description": "Linked invoice", "name": "invoiceId", "in": "query"},
                    {"type": "integer", "description": "Page size (max 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            },
            "post": {
                "description": "Starts a payment with the chosen provider and stores it at version 1",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Create a payment",
                "parameters": [
                    {"description": "Payment to create", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreatePaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            }
        },
        "/billing/payments/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Get a payment",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Payment ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            },
            "patch": {
                "description": "Administrative edit. A version, when given, must match the stored one.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Edit a payment",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Payment ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdatePaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            }
        },
        "/billing/payments/{id}/cancel": {
            "post": {
                "description": "Only pending or processing payments can be canceled",
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Cancel a payment",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Payment ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            }
        },
        "/billing/payments/{id}/refunds": {
            "get": {
                "produces": ["application/json"],
                "tags": ["refunds"],
                "summary": "List refunds of a payment",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Payment ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            },
            "post": {
                "description": "Omitting the amount refunds whatever is still refundable",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["refunds"],
                "summary": "Refund a payment",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Payment ID", "name": "id", "in": "path", "required": true},
                    {"description": "Refund details", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handlers.RefundRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            }
        },
        "/billing/invoices": {
            "post": {
                "description": "Totals are computed from the line items. A linked payment gets the invoice id back.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Create an invoice",
                "parameters": [
                    {"description": "Invoice to create", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateInvoiceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            }
        },
        "/billing/invoices/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Get an invoice",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Invoice ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            }
        },
        "/billing/invoices/{id}/status": {
            "patch": {
                "description": "Marking an invoice paid also moves its linked payment to succeeded",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Change an invoice status",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Invoice ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateInvoiceStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            }
        },
        "/billing/webhooks/{provider}": {
            "post": {
                "description": "Always acknowledged with 200 so providers do not retry. Outcomes are only logged.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["webhooks"],
                "summary": "Provider webhook",
                "parameters": [
                    {"type": "string", "example": "stripe", "description": "Provider key", "name": "provider", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.WebhookAck"}}
                }
            }
        },
        "/billing/test/process": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["test-provider"],
                "summary": "Complete a test checkout",
                "parameters": [
                    {"description": "Scenario to play", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/testprovider.ProcessRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/rest.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "rest.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "rest.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/rest.APIError"}
            }
        },
        "handlers.CreatePaymentRequest": {
            "type": "object",
            "required": ["amount", "currency", "provider"],
            "properties": {
                "provider": {"type": "string", "example": "mollie"},
                "amount": {"type": "integer", "maximum": 99999999999, "example": 1050},
                "currency": {"type": "string", "example": "EUR"},
                "description": {"type": "string", "example": "Pro plan, March"},
                "metadata": {"type": "object", "additionalProperties": {"type": "string"}},
                "redirectUrl": {"type": "string", "example": "https://shop.example.com/thanks"},
                "invoiceId": {"type": "string", "format": "uuid"}
            }
        },
        "handlers.UpdatePaymentRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "succeeded"},
                "description": {"type": "string"},
                "metadata": {"type": "object", "additionalProperties": {"type": "string"}},
                "version": {"type": "integer", "example": 3}
            }
        },
        "handlers.RefundRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "integer", "example": 500},
                "reason": {"type": "string", "enum": ["duplicate", "fraudulent", "requested_by_customer", "other"]}
            }
        },
        "handlers.LineItemRequest": {
            "type": "object",
            "required": ["description", "quantity"],
            "properties": {
                "description": {"type": "string", "example": "Pro plan"},
                "quantity": {"type": "integer", "example": 1},
                "unitAmount": {"type": "integer", "maximum": 99999999999, "example": 1050}
            }
        },
        "handlers.CreateInvoiceRequest": {
            "type": "object",
            "required": ["currency", "items"],
            "properties": {
                "number": {"type": "string", "example": "INV-2026-0042"},
                "status": {"type": "string", "enum": ["draft", "open", "paid", "void", "uncollectible"]},
                "currency": {"type": "string", "example": "EUR"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/handlers.LineItemRequest"}},
                "taxAmount": {"type": "integer", "maximum": 99999999999},
                "dueDate": {"type": "string", "format": "date-time"},
                "paymentId": {"type": "string", "format": "uuid"},
                "customerName": {"type": "string"},
                "customerEmail": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "handlers.UpdateInvoiceStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["draft", "open", "paid", "void", "uncollectible"]},
                "version": {"type": "integer", "example": 2}
            }
        },
        "handlers.WebhookAck": {
            "type": "object",
            "properties": {
                "received": {"type": "boolean", "example": true}
            }
        },
        "testprovider.ProcessRequest": {
            "type": "object",
            "required": ["method", "paymentId", "scenarioId"],
            "properties": {
                "paymentId": {"type": "string", "example": "test_pay_1760000000000_abc123xyz"},
                "scenarioId": {"type": "string", "example": "delayed-success"},
                "method": {"type": "string", "enum": ["ideal", "creditcard", "paypal", "applepay", "banktransfer"]}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Billing Reconciler API",
	Description:      "Payment lifecycle, refunds, invoices and provider webhooks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
