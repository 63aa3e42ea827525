package store

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet"
	"github.com/apache/arrow/go/v13/parquet/file"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	"github.com/curricula-dev/curricula/pkg/core"
)

// Parquet corpus layout: one row per trajectory.
//
//	scenario    utf8          scenario type tag
//	dt          float64       timestep size in seconds
//	num_agents  int64
//	horizon     int64
//	states      list<float64> flattened [horizon][num_agents][5]:
//	                          posx, posy, velx, vely, assignment
//	swap_steps  list<int64>   assignment-change log, parallel lists
//	swap_a      list<int64>
//	swap_b      list<int64>
const stateStride = 5

// LoadParquet reads a trajectory corpus from a parquet file.
func LoadParquet(ctx context.Context, path string) ([]*core.Trajectory, error) {
	reader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
	}
	defer reader.Close()

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	indices := map[string]int{}
	for _, name := range []string{"scenario", "dt", "num_agents", "horizon", "states", "swap_steps", "swap_a", "swap_b"} {
		found := schema.FieldIndices(name)
		if len(found) == 0 {
			return nil, fmt.Errorf("required column %q not found in corpus schema", name)
		}
		indices[name] = found[0]
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer table.Release()

	scenarios := newChunkedStrings(table.Column(indices["scenario"]).Data())
	dts := newChunkedFloats(table.Column(indices["dt"]).Data())
	numAgents := newChunkedInts(table.Column(indices["num_agents"]).Data())
	horizons := newChunkedInts(table.Column(indices["horizon"]).Data())
	states := newChunkedFloatLists(table.Column(indices["states"]).Data())
	swapSteps := newChunkedIntLists(table.Column(indices["swap_steps"]).Data())
	swapA := newChunkedIntLists(table.Column(indices["swap_a"]).Data())
	swapB := newChunkedIntLists(table.Column(indices["swap_b"]).Data())

	out := make([]*core.Trajectory, 0, table.NumRows())
	for row := 0; row < int(table.NumRows()); row++ {
		traj, err := decodeRow(row, scenarios, dts, numAgents, horizons, states, swapSteps, swapA, swapB)
		if err != nil {
			return nil, fmt.Errorf("corpus row %d: %w", row, err)
		}
		out = append(out, traj)
	}

	return out, nil
}

// LoadParquetInto loads a corpus file and adds every trajectory to the store.
func LoadParquetInto(ctx context.Context, s *Store, path string) (int, error) {
	trajs, err := LoadParquet(ctx, path)
	if err != nil {
		return 0, err
	}
	for _, traj := range trajs {
		if err := s.Add(traj); err != nil {
			return 0, err
		}
	}
	return len(trajs), nil
}

// WriteParquet writes a corpus file in the layout LoadParquet reads. Used by
// corpus generation tooling; trajectory ids are not persisted, loading
// assigns fresh ones.
func WriteParquet(path string, trajs []*core.Trajectory) error {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "scenario", Type: arrow.BinaryTypes.String},
		{Name: "dt", Type: arrow.PrimitiveTypes.Float64},
		{Name: "num_agents", Type: arrow.PrimitiveTypes.Int64},
		{Name: "horizon", Type: arrow.PrimitiveTypes.Int64},
		{Name: "states", Type: arrow.ListOf(arrow.PrimitiveTypes.Float64)},
		{Name: "swap_steps", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)},
		{Name: "swap_a", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)},
		{Name: "swap_b", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)},
	}, nil)

	bldr := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer bldr.Release()

	scenarioB := bldr.Field(0).(*array.StringBuilder)
	dtB := bldr.Field(1).(*array.Float64Builder)
	agentsB := bldr.Field(2).(*array.Int64Builder)
	horizonB := bldr.Field(3).(*array.Int64Builder)
	statesB := bldr.Field(4).(*array.ListBuilder)
	statesV := statesB.ValueBuilder().(*array.Float64Builder)
	stepsB := bldr.Field(5).(*array.ListBuilder)
	stepsV := stepsB.ValueBuilder().(*array.Int64Builder)
	aB := bldr.Field(6).(*array.ListBuilder)
	aV := aB.ValueBuilder().(*array.Int64Builder)
	bB := bldr.Field(7).(*array.ListBuilder)
	bV := bB.ValueBuilder().(*array.Int64Builder)

	for _, traj := range trajs {
		ids := traj.AgentIDs()
		// The file format identifies agents by position, 0..N-1; swap
		// references are remapped accordingly.
		idx := make(map[int]int, len(ids))
		for i, id := range ids {
			idx[id] = i
		}
		scenarioB.Append(string(traj.Scenario))
		dtB.Append(traj.Dt)
		agentsB.Append(int64(len(ids)))
		horizonB.Append(int64(traj.Horizon()))

		statesB.Append(true)
		for _, st := range traj.Steps {
			for _, id := range ids {
				a := st[id]
				statesV.Append(a.Position[0])
				statesV.Append(a.Position[1])
				statesV.Append(a.Velocity[0])
				statesV.Append(a.Velocity[1])
				statesV.Append(float64(a.Assignment))
			}
		}

		stepsB.Append(true)
		aB.Append(true)
		bB.Append(true)
		for _, sw := range traj.Swaps {
			stepsV.Append(int64(sw.Step))
			aV.Append(int64(idx[sw.A]))
			bV.Append(int64(idx[sw.B]))
		}
	}

	rec := bldr.NewRecord()
	defer rec.Release()
	table := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer table.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create corpus file %s: %w", path, err)
	}
	defer f.Close()

	if err := pqarrow.WriteTable(table, f, table.NumRows(),
		parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return nil
}

func decodeRow(
	row int,
	scenarios *chunkedStrings,
	dts *chunkedFloats,
	numAgents, horizons *chunkedInts,
	states *chunkedFloatLists,
	swapSteps, swapA, swapB *chunkedIntLists,
) (*core.Trajectory, error) {
	scenario := core.ScenarioType(scenarios.value(row))
	dt := dts.value(row)
	agents := int(numAgents.value(row))
	horizon := int(horizons.value(row))

	flat := states.values(row)
	if len(flat) != horizon*agents*stateStride {
		return nil, fmt.Errorf("states column has %d values, want %d", len(flat), horizon*agents*stateStride)
	}

	steps := make([]core.TimestepState, horizon)
	for t := 0; t < horizon; t++ {
		st := make(core.TimestepState, agents)
		base := t * agents * stateStride
		for a := 0; a < agents; a++ {
			off := base + a*stateStride
			st[a] = core.AgentState{
				Position:   core.Vec2{flat[off], flat[off+1]},
				Velocity:   core.Vec2{flat[off+2], flat[off+3]},
				Assignment: int(flat[off+4]),
			}
		}
		steps[t] = st
	}

	stepsList := swapSteps.values(row)
	aList := swapA.values(row)
	bList := swapB.values(row)
	if len(stepsList) != len(aList) || len(stepsList) != len(bList) {
		return nil, fmt.Errorf("swap log lists have mismatched lengths")
	}
	var swaps []core.SwapEvent
	for i := range stepsList {
		swaps = append(swaps, core.SwapEvent{
			Step: int(stepsList[i]),
			A:    int(aList[i]),
			B:    int(bList[i]),
		})
	}

	return core.NewTrajectory(scenario, dt, steps, swaps)
}

// Chunked column accessors. Arrow tables split columns into chunks; these
// wrappers resolve a table-global row index to (chunk, offset) once per
// access.

type chunkedStrings struct{ chunks []*array.String }

func newChunkedStrings(data *arrow.Chunked) *chunkedStrings {
	c := &chunkedStrings{}
	for _, chunk := range data.Chunks() {
		c.chunks = append(c.chunks, chunk.(*array.String))
	}
	return c
}

func (c *chunkedStrings) value(row int) string {
	for _, chunk := range c.chunks {
		if row < chunk.Len() {
			return chunk.Value(row)
		}
		row -= chunk.Len()
	}
	return ""
}

type chunkedFloats struct{ chunks []*array.Float64 }

func newChunkedFloats(data *arrow.Chunked) *chunkedFloats {
	c := &chunkedFloats{}
	for _, chunk := range data.Chunks() {
		c.chunks = append(c.chunks, chunk.(*array.Float64))
	}
	return c
}

func (c *chunkedFloats) value(row int) float64 {
	for _, chunk := range c.chunks {
		if row < chunk.Len() {
			return chunk.Value(row)
		}
		row -= chunk.Len()
	}
	return 0
}

type chunkedInts struct{ chunks []*array.Int64 }

func newChunkedInts(data *arrow.Chunked) *chunkedInts {
	c := &chunkedInts{}
	for _, chunk := range data.Chunks() {
		c.chunks = append(c.chunks, chunk.(*array.Int64))
	}
	return c
}

func (c *chunkedInts) value(row int) int64 {
	for _, chunk := range c.chunks {
		if row < chunk.Len() {
			return chunk.Value(row)
		}
		row -= chunk.Len()
	}
	return 0
}

type chunkedFloatLists struct{ chunks []*array.List }

func newChunkedFloatLists(data *arrow.Chunked) *chunkedFloatLists {
	c := &chunkedFloatLists{}
	for _, chunk := range data.Chunks() {
		c.chunks = append(c.chunks, chunk.(*array.List))
	}
	return c
}

func (c *chunkedFloatLists) values(row int) []float64 {
	for _, chunk := range c.chunks {
		if row < chunk.Len() {
			start, end := chunk.ValueOffsets(row)
			vals := chunk.ListValues().(*array.Float64)
			out := make([]float64, 0, end-start)
			for i := start; i < end; i++ {
				out = append(out, vals.Value(int(i)))
			}
			return out
		}
		row -= chunk.Len()
	}
	return nil
}

type chunkedIntLists struct{ chunks []*array.List }

func newChunkedIntLists(data *arrow.Chunked) *chunkedIntLists {
	c := &chunkedIntLists{}
	for _, chunk := range data.Chunks() {
		c.chunks = append(c.chunks, chunk.(*array.List))
	}
	return c
}

func (c *chunkedIntLists) values(row int) []int64 {
	for _, chunk := range c.chunks {
		if row < chunk.Len() {
			start, end := chunk.ValueOffsets(row)
			vals := chunk.ListValues().(*array.Int64)
			out := make([]int64, 0, end-start)
			for i := start; i < end; i++ {
				out = append(out, vals.Value(int(i)))
			}
			return out
		}
		row -= chunk.Len()
	}
	return nil
}
