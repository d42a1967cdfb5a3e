package aggregates

// WriteTxOwnership says who opens the transaction around a write.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate opens a transaction per call, or joins the
	// one already carried on the context.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
)

// ReadPolicy limits what an aggregate may read.
type ReadPolicy string

const (
	// ReadPolicyInvariantScoped allows only the reads a write decision needs.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
	// ReadPolicyTableRepoQueries leaves listing and reporting to table repos.
	ReadPolicyTableRepoQueries ReadPolicy = "table_repo_queries"
)

type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	// JoinsAmbientTx is true when a caller may run several aggregates in one
	// transaction (payment settlement runs the ledger and the enrollment grant
	// together).
	JoinsAmbientTx bool
	Notes          string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}
