// Package cdag materializes a structural snapshot of a conveyor pipeline as
// a directed acyclic graph of data flows.
//
// An Inspector builds Nodes from the pipeline's staged factories, then
// computes internal Flows (producer stage strictly below consumer stage,
// matched on payload type and delivery ID only) and external Flows
// (requirements satisfiable only from the dispatcher, attached to a
// synthetic External node at stage -1). The resulting DAG validates its
// acyclicity invariant and exports as a human-readable summary or a Mermaid
// flowchart.
//
// The snapshot is rebuilt on every inspection; Node and Flow equality is by
// content, so inspecting an unchanged pipeline twice yields equal DAGs.
//
// IMPORTANT: Inspector is NOT safe for concurrent use. The DAG it returns is
// immutable and safe to share.
package cdag
