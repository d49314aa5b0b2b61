package schema

import (
	"encoding/json"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Contract holds the schema definition for the Contract entity.
// Rows are written by the generation pipeline; this service only reads them.
type Contract struct {
	ent.Schema
}

// Fields of the Contract.
func (Contract) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.Text("code").
			Comment("Solidity source"),
		field.JSON("abi", json.RawMessage{}).
			Comment("Compiled ABI array"),
		field.Text("bytecode"),
		field.String("owner_address").
			Comment("Wallet address that deployed or owns the contract"),
		field.Int64("chain_id").
			Optional().
			Nillable(),
		field.JSON("constructor_args", json.RawMessage{}).
			Optional(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.String("user_id").
			Optional().
			Nillable(),
	}
}

// Edges of the Contract.
func (Contract) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("contracts").
			Field("user_id").
			Unique(),
	}
}

// Indexes of the Contract.
func (Contract) Indexes() []ent.Index {
	return []ent.Index{
		// Latest-by-owner lookups
		index.Fields("owner_address", "created_at"),
	}
}

// Annotations of the Contract.
func (Contract) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "contracts"},
	}
}
