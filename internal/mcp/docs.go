package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `recordkeep keeps two families of records: rent agreements and time entries.

Identity: every call runs as the authenticated principal. Tools never take a caller argument.

Rent agreements (rent_id):
- create_agreement makes you the landlord; the named tenant must activate it.
- CREATED -> ACTIVE (tenant: activate_agreement) -> COMPLETED (landlord: complete_agreement).
- CREATED -> CANCELLED (landlord: cancel_agreement).
- pay_rent (tenant) adds one month while ACTIVE.
- COMPLETED and CANCELLED are final.

Time entries (entry_id):
- log_time records an unapproved span; hours = end_time - start_time.
- approve_time is one-way and repeatable. is_time_approved reports false for unknown ids.

Ids, times and amounts are decimal strings, e.g. "rent_id": "42". Ids and times span the
full unsigned 64-bit range; amounts are signed 64-bit.

Errors carry a code: INVALID_AMOUNT, DUPLICATE_ID, NOT_FOUND, INVALID_STATE, UNAUTHORIZED,
INVALID_TIME_RANGE, INVALID_ARGUMENT.

Docs:
- recordkeep://docs/index
- recordkeep://docs/rent-lifecycle
- recordkeep://docs/time-entries
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "recordkeep://docs/index",
		Name:        "docs_index",
		Title:       "recordkeep docs index",
		Description: "Entry point: the two record families and where to read more.",
		Content: `# recordkeep

Two independent record families share one store. Ids only need to be unique within a family:
rent agreement 1 and time entry 1 are different records.

- ` + "`recordkeep://docs/rent-lifecycle`" + ` - agreement states, who may do what, error codes.
- ` + "`recordkeep://docs/time-entries`" + ` - logging and approving time.

## Reading

` + "`get_agreement`" + ` and ` + "`get_time_entry`" + ` return ` + "`found: false`" + ` for unknown ids
instead of an error.
`,
	},
	{
		URI:         "recordkeep://docs/rent-lifecycle",
		Name:        "rent_lifecycle",
		Title:       "Rent agreement lifecycle",
		Description: "States, transitions, roles and failure codes for rent agreements.",
		Content: `# Rent agreement lifecycle

| Tool | Role | From | To |
|---|---|---|---|
| ` + "`activate_agreement`" + ` | tenant | CREATED | ACTIVE |
| ` + "`pay_rent`" + ` | tenant | ACTIVE | ACTIVE (months_paid + 1) |
| ` + "`complete_agreement`" + ` | landlord | ACTIVE | COMPLETED |
| ` + "`cancel_agreement`" + ` | landlord | CREATED | CANCELLED |

COMPLETED and CANCELLED are terminal: every later action fails and nothing changes.

Role is checked before status. A caller who is not the named party gets ` + "`UNAUTHORIZED`" + `
whatever the status; the named party acting from the wrong status gets ` + "`INVALID_STATE`" + `.

Creation fails with ` + "`INVALID_AMOUNT`" + ` when monthly_rent is not positive or the deposit is
negative, and with ` + "`DUPLICATE_ID`" + ` when the rent_id is taken. The stored agreement is never
overwritten by a failed create.
`,
	},
	{
		URI:         "recordkeep://docs/time-entries",
		Name:        "time_entries",
		Title:       "Time entries",
		Description: "Logging spans of work and approving them.",
		Content: `# Time entries

` + "`log_time`" + ` stores a span with hours = end_time - start_time and approved = false.
end_time must be strictly after start_time (` + "`INVALID_TIME_RANGE`" + `). worker defaults to you.

` + "`approve_time`" + ` flips approved to true and never back. Approving an approved entry succeeds
without change. Unknown ids fail with ` + "`NOT_FOUND`" + `.

A server may be configured with an approval rule over the caller and entry, for example
` + "`caller != entry.worker`" + `. A rejected approval fails with ` + "`UNAUTHORIZED`" + `.

` + "`is_time_approved`" + ` reports false both for unapproved and unknown entries; use
` + "`get_time_entry`" + ` to tell them apart.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
