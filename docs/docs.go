// Package docs registers the OpenAPI description served by the swagger UI.
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
        "/solana/wallet": {
            "get": {
                "produces": ["application/json"],
                "tags": ["solana"],
                "summary": "Get wallet",
                "parameters": [{"type": "string", "name": "user_id", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.WalletResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/solana/balance": {
            "get": {
                "produces": ["application/json"],
                "tags": ["solana"],
                "summary": "Get wallet balance (USD = SOL * rate)",
                "parameters": [{"type": "string", "name": "address", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SolanaBalanceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/solana/positions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["solana"],
                "summary": "Get token positions",
                "parameters": [{"type": "string", "name": "address", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PositionsResponse"}}
                }
            }
        },
        "/solana/swap": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["solana"],
                "summary": "Swap tokens",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SwapRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SubmissionResult"}}
                }
            }
        },
        "/solana/transfer": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["solana"],
                "summary": "Send SOL",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.TransferRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SubmissionResult"}}
                }
            }
        },
        "/solana/submit": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["solana"],
                "summary": "Sign and send a transaction",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SubmitRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SubmissionResult"}}
                }
            }
        },
        "/copytrades": {
            "get": {
                "produces": ["application/json"],
                "tags": ["copytrades"],
                "summary": "List copy trades",
                "parameters": [{"type": "string", "name": "user_id", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.CopyTradeWallet"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["copytrades"],
                "summary": "Create or update a copy trade",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CopyTradeWallet"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.CopyTradeWallet"}}
                }
            },
            "delete": {
                "tags": ["copytrades"],
                "summary": "Delete a copy trade",
                "parameters": [
                    {"type": "string", "name": "user_id", "in": "query", "required": true},
                    {"type": "string", "name": "copy_trade_address", "in": "query", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Get session status",
                "parameters": [{"type": "string", "name": "user_id", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SessionResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Start a signing session",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SessionRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SessionResponse"}}
                }
            },
            "delete": {
                "tags": ["session"],
                "summary": "End the session",
                "parameters": [{"type": "string", "name": "user_id", "in": "query", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/users/{id}": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["users"],
                "summary": "Store a user",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.UserRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        },
        "model.WalletResponse": {
            "type": "object",
            "properties": {"address": {"type": "string"}, "QR": {"type": "string"}}
        },
        "model.SolanaBalanceResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "sol": {"type": "string"},
                "sol_usd_rate": {"type": "string"},
                "sol_amount_in_usd": {"type": "string"}
            }
        },
        "model.TokenBalance": {
            "type": "object",
            "properties": {
                "mint": {"type": "string"},
                "account": {"type": "string"},
                "amount": {"type": "string"},
                "uiAmount": {"type": "string"},
                "decimals": {"type": "integer"},
                "rentLamports": {"type": "integer"}
            }
        },
        "model.PositionsResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "tokens": {"type": "array", "items": {"$ref": "#/definitions/model.TokenBalance"}}
            }
        },
        "model.SwapRequest": {
            "type": "object",
            "properties": {
                "tgUserId": {"type": "string"},
                "inputMint": {"type": "string"},
                "outputMint": {"type": "string"},
                "amount": {"type": "string"},
                "decimals": {"type": "integer"},
                "slippage": {"type": "number"}
            }
        },
        "model.TransferRequest": {
            "type": "object",
            "properties": {
                "tgUserId": {"type": "string"},
                "toAddress": {"type": "string"},
                "amount": {"type": "string"}
            }
        },
        "model.SubmitRequest": {
            "type": "object",
            "properties": {"tgUserId": {"type": "string"}, "transaction": {"type": "string"}}
        },
        "model.SubmissionResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "signature": {"type": "string"},
                "blockHash": {"type": "string"},
                "error": {"type": "string"},
                "attempts": {"type": "integer"}
            }
        },
        "model.CopyTradeWallet": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "wallet_id": {"type": "string"},
                "account_address": {"type": "string"},
                "buy_amount": {"type": "string"},
                "copy_trade_address": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "model.SessionRequest": {
            "type": "object",
            "properties": {"tgUserId": {"type": "string"}, "durationMinutes": {"type": "integer"}}
        },
        "model.SessionResponse": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "expiresAt": {"type": "string"},
                "remaining": {"type": "string"}
            }
        },
        "model.UserRequest": {
            "type": "object",
            "properties": {
                "tgUserId": {"type": "string"},
                "userId": {"type": "string"},
                "subOrgId": {"type": "string"},
                "publicKey": {"type": "string"},
                "privateKey": {"type": "string"},
                "walletAddress": {"type": "string"}
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
	Title:            "trade-relay API",
	Description:      "Wallet, swap, transfer and copy trade API for the Telegram mini-app.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
