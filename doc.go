// Package sapling renders an external data tree as a lazily materialized
// scene graph of node shapes.
//
// Sapling keeps a sparse visual mirror of an arbitrarily large data tree:
// node shapes are created on demand around whatever the user is looking at,
// animated toward targets every tick, and indexed spatially so that hit
// testing and neighbour discovery never scan every shape.
//
// # Quick start
//
//	root := sapling.GenerateTree(3, 4)
//	vis := sapling.NewVisualisation(sapling.DefaultConfig())
//	shape := vis.Materialize(root)
//	shape.CreateDescendants(2)
//
//	for {
//		vis.Tick(1.0 / 60)
//	}
//
// To drive the clock and pointer input from a window, see the ebitenhost
// package.
//
// # Materialization
//
// Every visible element of the tree is a [NodeShape] bound to one [DataNode]
// and one [Visualisation]. A data node is mirrored by at most one node shape
// per visualisation. Shapes are created with [NodeShape.CreateParent],
// [NodeShape.CreateChildren], [NodeShape.CreateDescendants] and friends, and
// torn down with the matching Destroy methods. The visualisation keeps the
// root, leaf and collapsed sets up to date as a side effect of each relation
// change; they are never recomputed by scanning.
//
// # Motion
//
// Each shape carries a [TransformAnimator]. Targets set with
// [TransformAnimator.SetTargetLoc] and friends are chased with a
// friction/speed integrator until they are reached, at which point the
// arrival callback fires exactly once. Targets can be fixed values or
// functions evaluated every tick, see [Toward] and [TweenLoc].
//
// # Multiple views
//
// Several visualisations may mirror the same data tree. Selecting or
// focusing a node shape forwards the change to the shapes of the same data
// node in every other visualisation, exactly once.
package sapling
