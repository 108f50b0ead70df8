package extract

import "github.com/goccy/go-json"

// JSON schemas sent to the backend in schema-constrained mode. Hand-written
// rather than reflected: the wire contract must stay stable even if the
// domain structs grow internal helpers.

var classificationSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "category": {"type": "string", "enum": ["General", "Invoice", "Customer Requests", "Misc"]},
    "priority": {"type": "string", "enum": ["High", "Medium", "Low"]}
  },
  "required": ["category", "priority"],
  "additionalProperties": false
}`)

var invoiceSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "invoice_number":    {"type": ["string", "null"]},
    "invoice_date":      {"type": ["string", "null"]},
    "due_date":          {"type": ["string", "null"]},
    "invoice_amount":    {"type": ["string", "null"]},
    "payment_link":      {"type": ["string", "null"]},
    "bsb":               {"type": ["string", "null"]},
    "account_number":    {"type": ["string", "null"]},
    "account_name":      {"type": ["string", "null"]},
    "biller_code":       {"type": ["string", "null"]},
    "payment_reference": {"type": ["string", "null"]},
    "description":       {"type": ["string", "null"]}
  },
  "additionalProperties": false
}`)

var requestSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "summary":       {"type": "string"},
    "ticket_number": {"type": ["string", "null"]}
  },
  "required": ["summary"],
  "additionalProperties": false
}`)
