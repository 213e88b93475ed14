package clients

import "github.com/phrazzld/censudex-gateway/internal/platform/backend"

// Schema is the contract of clients.ClientService.
var Schema = backend.MustSchema(backend.FileSpec{
	Path:    "clients.proto",
	Package: "clients",
	Service: "ClientService",
	Methods: []backend.MethodSpec{
		{Name: MethodCreateClient, Input: "CreateClientRequest", Output: "ClientResponse"},
		{Name: MethodGetAllClients, Input: "GetAllClientsRequest", Output: "GetAllClientsResponse"},
		{Name: MethodGetClientByID, Input: "GetClientByIdRequest", Output: "ClientResponse"},
		{Name: MethodUpdateClient, Input: "UpdateClientRequest", Output: "ClientResponse"},
		{Name: MethodUpdatePassword, Input: "UpdatePasswordRequest", Output: "MessageResponse"},
		{Name: MethodDeleteClient, Input: "DeleteClientRequest", Output: "MessageResponse"},
	},
	Messages: []backend.MessageSpec{
		{Name: "CreateClientRequest", Fields: []backend.FieldSpec{
			backend.String("firstName", 1),
			backend.String("lastName", 2),
			backend.String("email", 3),
			backend.String("username", 4),
			backend.String("password", 5),
			backend.String("birthDate", 6),
			backend.String("address", 7),
			backend.String("phone", 8),
		}},
		{Name: "ClientResponse", Fields: []backend.FieldSpec{
			backend.String("message", 1),
			backend.String("id", 2),
			backend.String("firstName", 3),
			backend.String("lastName", 4),
			backend.String("email", 5),
			backend.String("username", 6),
			backend.String("role", 7),
			backend.Bool("isActive", 8),
			backend.String("birthDate", 9),
			backend.String("address", 10),
			backend.String("phone", 11),
			backend.String("createdAt", 12),
			backend.String("updatedAt", 13),
		}},
		{Name: "Client", Fields: []backend.FieldSpec{
			backend.String("id", 1),
			backend.String("firstName", 2),
			backend.String("lastName", 3),
			backend.String("email", 4),
			backend.String("username", 5),
			backend.String("role", 6),
			backend.Bool("isActive", 7),
			backend.String("birthDate", 8),
			backend.String("address", 9),
			backend.String("phone", 10),
			backend.String("createdAt", 11),
			backend.String("updatedAt", 12),
		}},
		{Name: "GetAllClientsRequest", Fields: []backend.FieldSpec{
			backend.String("name", 1).OptionalField(),
			backend.String("email", 2).OptionalField(),
			backend.String("username", 3).OptionalField(),
			backend.String("isActive", 4).OptionalField(),
		}},
		{Name: "GetAllClientsResponse", Fields: []backend.FieldSpec{
			backend.Int32("count", 1),
			backend.Message("clients", 2, "Client").RepeatedField(),
		}},
		{Name: "GetClientByIdRequest", Fields: []backend.FieldSpec{
			backend.String("id", 1),
			backend.Bool("includePassword", 2),
		}},
		{Name: "UpdateClientRequest", Fields: []backend.FieldSpec{
			backend.String("id", 1),
			backend.String("firstName", 2).OptionalField(),
			backend.String("lastName", 3).OptionalField(),
			backend.String("email", 4).OptionalField(),
			backend.String("username", 5).OptionalField(),
			backend.String("birthDate", 6).OptionalField(),
			backend.String("address", 7).OptionalField(),
			backend.String("phone", 8).OptionalField(),
		}},
		{Name: "UpdatePasswordRequest", Fields: []backend.FieldSpec{
			backend.String("id", 1),
			backend.String("password", 2),
		}},
		{Name: "DeleteClientRequest", Fields: []backend.FieldSpec{
			backend.String("id", 1),
		}},
		{Name: "MessageResponse", Fields: []backend.FieldSpec{
			backend.String("message", 1),
		}},
	},
})

// RPC names of clients.ClientService.
const (
	MethodCreateClient   = "CreateClient"
	MethodGetAllClients  = "GetAllClients"
	MethodGetClientByID  = "GetClientById"
	MethodUpdateClient   = "UpdateClient"
	MethodUpdatePassword = "UpdatePassword"
	MethodDeleteClient   = "DeleteClient"
)
