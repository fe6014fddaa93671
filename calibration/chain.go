// Package calibration identifies the geometric parameters of a serial arm from measured end
// effector poses. The arm is described as an ordered chain of elementary transforms, each driven
// either by a joint variable or by an unknown parameter.
package calibration

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/trajplan/spatialmath"
)

// ElementKind is the type of an elementary transform.
type ElementKind int

// The elementary transforms a chain is built from.
const (
	TX ElementKind = iota
	TY
	TZ
	RX
	RY
	RZ
)

var kindNames = map[ElementKind]string{TX: "tx", TY: "ty", TZ: "tz", RX: "rx", RY: "ry", RZ: "rz"}

func (k ElementKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ElementKind(%d)", int(k))
}

type transformFunc func(float64) *mat.Dense

// elementary transforms and their derivatives with respect to their argument
var kindTransforms = map[ElementKind][2]transformFunc{
	TX: {spatialmath.TranslationX, spatialmath.DTranslationX},
	TY: {spatialmath.TranslationY, spatialmath.DTranslationY},
	TZ: {spatialmath.TranslationZ, spatialmath.DTranslationZ},
	RX: {spatialmath.RotationX, spatialmath.DRotationX},
	RY: {spatialmath.RotationY, spatialmath.DRotationY},
	RZ: {spatialmath.RotationZ, spatialmath.DRotationZ},
}

// Element is one elementary transform of a chain. Exactly one of Joint and Param is a valid index,
// the other is -1.
type Element struct {
	Kind  ElementKind
	Joint int
	Param int
}

// JointElement returns an element driven by joint j.
func JointElement(kind ElementKind, j int) Element {
	return Element{Kind: kind, Joint: j, Param: -1}
}

// ParamElement returns an element driven by parameter k.
func ParamElement(kind ElementKind, k int) Element {
	return Element{Kind: kind, Joint: -1, Param: k}
}

func (e Element) String() string {
	if e.Joint >= 0 {
		return fmt.Sprintf("%v(q%d)", e.Kind, e.Joint)
	}
	return fmt.Sprintf("%v(p%d)", e.Kind, e.Param)
}

func (e Element) transform(q, params []float64, derivative bool) *mat.Dense {
	var value float64
	if e.Joint >= 0 {
		value = q[e.Joint]
	} else {
		value = params[e.Param]
	}
	if derivative {
		return kindTransforms[e.Kind][1](value)
	}
	return kindTransforms[e.Kind][0](value)
}

// Chain is an ordered list of elements multiplied left to right.
type Chain []Element

// NumJoints returns the number of joint variables the chain reads.
func (c Chain) NumJoints() int {
	return 1 + lo.Max(lo.Map(c, func(e Element, _ int) int { return e.Joint }))
}

// NumParams returns the number of parameters the chain reads.
func (c Chain) NumParams() int {
	return 1 + lo.Max(lo.Map(c, func(e Element, _ int) int { return e.Param }))
}

// Validate checks that every element is driven by exactly one variable and that each parameter
// drives exactly one element.
func (c Chain) Validate() error {
	if len(c) == 0 {
		return errors.New("empty chain")
	}
	for i, e := range c {
		if _, ok := kindTransforms[e.Kind]; !ok {
			return errors.Errorf("element %d has unknown kind %v", i, e.Kind)
		}
		if (e.Joint >= 0) == (e.Param >= 0) {
			return errors.Errorf("element %d (%v) must be driven by exactly one of a joint or a parameter", i, e.Kind)
		}
	}
	counts := lo.CountValues(lo.FilterMap(c, func(e Element, _ int) (int, bool) { return e.Param, e.Param >= 0 }))
	for k := 0; k < c.NumParams(); k++ {
		if counts[k] != 1 {
			return errors.Errorf("parameter %d drives %d elements, expected exactly 1", k, counts[k])
		}
	}
	return nil
}

// fold multiplies the chain out. When wrt is a parameter index, the element it drives is replaced
// by its derivative, giving the partial derivative of the chain with respect to that parameter.
func (c Chain) fold(q, params []float64, wrt int) *mat.Dense {
	return lo.Reduce(c, func(acc *mat.Dense, e Element, _ int) *mat.Dense {
		var out mat.Dense
		out.Mul(acc, e.transform(q, params, e.Param >= 0 && e.Param == wrt))
		return &out
	}, spatialmath.Identity())
}

// FANUCReducibleChain returns the six joint, 18 parameter reducible model of a FANUC R-2000i.
//
//	Rz(q0) Tx(p0) Ty(p1) Rx(p2) Ry(q1) Ry(p3) Tx(p4) Rx(p5) Rz(p6) Ry(q2) Ry(p7) Tx(p8) Tz(p9)
//	Rz(p10) Rx(q3) Rx(p11) Ty(p12) Tz(p13) Rz(p14) Ry(q4) Ry(p15) Tz(p16) Rz(p17) Rx(q5)
func FANUCReducibleChain() Chain {
	return Chain{
		JointElement(RZ, 0),
		ParamElement(TX, 0), ParamElement(TY, 1), ParamElement(RX, 2),
		JointElement(RY, 1),
		ParamElement(RY, 3), ParamElement(TX, 4), ParamElement(RX, 5), ParamElement(RZ, 6),
		JointElement(RY, 2),
		ParamElement(RY, 7), ParamElement(TX, 8), ParamElement(TZ, 9), ParamElement(RZ, 10),
		JointElement(RX, 3),
		ParamElement(RX, 11), ParamElement(TY, 12), ParamElement(TZ, 13), ParamElement(RZ, 14),
		JointElement(RY, 4),
		ParamElement(RY, 15), ParamElement(TZ, 16), ParamElement(RZ, 17),
		JointElement(RX, 5),
	}
}

// FANUCNominalParameters returns the nominal values of the FANUCReducibleChain parameters, in meters
// and radians. The base height and flange length belong in the base and tool transforms.
func FANUCNominalParameters() []float64 {
	params := make([]float64, 18)
	params[0] = 0.312
	params[4] = 1.075
	params[8] = 1.280
	params[9] = 0.225
	return params
}
