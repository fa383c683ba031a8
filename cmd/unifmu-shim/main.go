// Command unifmu-shim is the cgo boundary exposing the FMI 2.0/3.0 C ABI.
// Built with `go build -buildmode=c-shared`, it produces the shared library
// an FMU's modelDescription.xml points `fmi2GetTypesPlatform`/friends at.
// Every exported function here is a thin adapter: convert C arrays and
// pointers to Go slices, call into internal/fmi2 or internal/fmi3, convert
// the result back. All simulation logic lives in those packages so it can
// be unit-tested without cgo (cmd/rtmp-server/main.go is grounded the same
// way: a process entry point with no protocol logic of its own).
package main

/*
#include <stdlib.h>
#include <stddef.h>

typedef void*        fmi2Component;
typedef void*        fmi2ComponentEnvironment;
typedef unsigned int  fmi2ValueReference;
typedef double        fmi2Real;
typedef int           fmi2Integer;
typedef int           fmi2Boolean;
typedef char          fmi2Char;
typedef const fmi2Char* fmi2String;
typedef char          fmi2Byte;
typedef int           fmi2Status;
typedef int           fmi2StatusKind;
typedef int           fmi2Type;
typedef void*         fmi2FMUstate;

typedef void (*fmi2CallbackLogger)(fmi2ComponentEnvironment, fmi2String, fmi2Status, fmi2String, fmi2String, ...);
typedef void* (*fmi2CallbackAllocateMemory)(size_t, size_t);
typedef void (*fmi2CallbackFreeMemory)(void*);
typedef void (*fmi2StepFinished)(fmi2ComponentEnvironment, fmi2Status);

typedef struct {
	fmi2CallbackLogger         logger;
	fmi2CallbackAllocateMemory allocateMemory;
	fmi2CallbackFreeMemory     freeMemory;
	fmi2StepFinished           stepFinished;
	fmi2ComponentEnvironment   componentEnvironment;
} fmi2CallbackFunctions;

static void bridgeFmi2Logger(fmi2CallbackLogger fn, fmi2ComponentEnvironment env, fmi2String instanceName, fmi2Status status, fmi2String category, fmi2String message) {
	fn(env, instanceName, status, category, "%s", message);
}

typedef void*         fmi3Instance;
typedef void*         fmi3InstanceEnvironment;
typedef unsigned int  fmi3ValueReference;
typedef float         fmi3Float32;
typedef double        fmi3Float64;
typedef signed char   fmi3Int8;
typedef short         fmi3Int16;
typedef int           fmi3Int32;
typedef long long     fmi3Int64;
typedef unsigned char fmi3UInt8;
typedef unsigned short fmi3UInt16;
typedef unsigned int  fmi3UInt32;
typedef unsigned long long fmi3UInt64;
typedef int           fmi3Boolean;
typedef char          fmi3Char;
typedef const fmi3Char* fmi3String;
typedef unsigned char fmi3Byte;
typedef const fmi3Byte* fmi3Binary;
typedef fmi3Byte*     fmi3MutableBinary;
typedef size_t        fmi3Size;
typedef int           fmi3Status;
typedef int           fmi3StatusKind;
typedef int           fmi3IntervalQualifier;
typedef int           fmi3Clock;

typedef void (*fmi3LogMessageCallback)(fmi3InstanceEnvironment, fmi3Status, fmi3String, fmi3String);

static void bridgeFmi3Logger(fmi3LogMessageCallback fn, fmi3InstanceEnvironment env, fmi3Status status, fmi3String category, fmi3String message) {
	fn(env, status, category, message);
}
*/
import "C"

import (
	"unsafe"

	"github.com/unifmu/unifmu-go/internal/fmi2"
	"github.com/unifmu/unifmu-go/internal/fmi3"
	"github.com/unifmu/unifmu-go/internal/fmilog"
	"github.com/unifmu/unifmu-go/internal/logger"
)

func main() {} // required by -buildmode=c-shared, never invoked by the host

// --- shared helpers -------------------------------------------------------

func refSlice(vr *C.fmi2ValueReference, n C.size_t) []uint32 {
	if n == 0 {
		return nil
	}
	src := unsafe.Slice((*uint32)(unsafe.Pointer(vr)), int(n))
	out := make([]uint32, len(src))
	copy(out, src)
	return out
}

func refSlice3(vr *C.fmi3ValueReference, n C.size_t) []uint32 {
	if n == 0 {
		return nil
	}
	src := unsafe.Slice((*uint32)(unsafe.Pointer(vr)), int(n))
	out := make([]uint32, len(src))
	copy(out, src)
	return out
}

func boolsFromCInt(p *C.fmi2Boolean, n C.size_t) []bool {
	src := unsafe.Slice(p, int(n))
	out := make([]bool, len(src))
	for i, v := range src {
		out[i] = v != 0
	}
	return out
}

func boolsFromC3(p *C.fmi3Boolean, n C.size_t) []bool {
	src := unsafe.Slice(p, int(n))
	out := make([]bool, len(src))
	for i, v := range src {
		out[i] = v != 0
	}
	return out
}

// fmi2Logger builds an fmilog.Callback that re-enters the C world through
// the bridge function above; fmi2CallbackLogger is variadic in the real
// header, so Go code can never call it directly and always routes through
// bridgeFmi2Logger with a pre-formatted "%s".
func fmi2Logger(fns *C.fmi2CallbackFunctions) fmilog.Callback {
	if fns == nil || fns.logger == nil {
		return nil
	}
	env := fns.componentEnvironment
	fn := fns.logger
	return func(instanceName, category string, severity fmilog.Severity, message string) {
		cInstance := C.CString(instanceName)
		cCategory := C.CString(category)
		cMessage := C.CString(message)
		defer C.free(unsafe.Pointer(cInstance))
		defer C.free(unsafe.Pointer(cCategory))
		defer C.free(unsafe.Pointer(cMessage))
		C.bridgeFmi2Logger(fn, env, cInstance, C.fmi2Status(severity), cCategory, cMessage)
	}
}

func fmi3Logger(env C.fmi3InstanceEnvironment, fn C.fmi3LogMessageCallback) fmilog.Callback {
	if fn == nil {
		return nil
	}
	return func(instanceName, category string, severity fmilog.Severity, message string) {
		cCategory := C.CString(category)
		cMessage := C.CString(message)
		defer C.free(unsafe.Pointer(cCategory))
		defer C.free(unsafe.Pointer(cMessage))
		C.bridgeFmi3Logger(fn, env, C.fmi3Status(severity), cCategory, cMessage)
	}
}

// --- FMI2: common ----------------------------------------------------------

//export fmi2GetTypesPlatform
func fmi2GetTypesPlatform() C.fmi2String {
	return C.CString(fmi2.TypesPlatform)
}

//export fmi2GetVersion
func fmi2GetVersion() C.fmi2String {
	return C.CString(fmi2.Version)
}

//export fmi2Instantiate
func fmi2Instantiate(instanceName C.fmi2String, fmuType C.fmi2Type, fmuGUID C.fmi2String, fmuResourceLocation C.fmi2String, functions *C.fmi2CallbackFunctions, visible, loggingOn C.fmi2Boolean) C.fmi2Component {
	const fmi2CoSimulation = 1
	fmuTypeName := "ModelExchange"
	if fmuType == fmi2CoSimulation {
		fmuTypeName = "CoSimulation"
	}
	h, err := fmi2.Instantiate(fmi2.InstantiateParams{
		InstanceName:     C.GoString(instanceName),
		GUID:             C.GoString(fmuGUID),
		ResourceLocation: C.GoString(fmuResourceLocation),
		FMUType:          fmuTypeName,
		Visible:          visible != 0,
		LoggingOn:        loggingOn != 0,
	}, fmi2Logger(functions))
	if err != nil {
		return nil
	}
	id := fmi2Handles.store(h)
	return C.fmi2Component(unsafe.Pointer(uintptr(id)))
}

func fmi2HandleFor(c C.fmi2Component) (*fmi2.Handle, uint64) {
	id := uint64(uintptr(c))
	h, ok := fmi2Handles.load(id)
	if !ok {
		logger.Error("cmd/unifmu-shim: unknown fmi2Component handle", "id", id)
		return nil, id
	}
	return h, id
}

//export fmi2FreeInstance
func fmi2FreeInstance(c C.fmi2Component) {
	h, id := fmi2HandleFor(c)
	if h == nil {
		return
	}
	h.FreeInstance()
	fmi2Handles.delete(id)
}

//export fmi2SetDebugLogging
func fmi2SetDebugLogging(c C.fmi2Component, loggingOn C.fmi2Boolean, nCategories C.size_t, categories **C.fmi2String) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	cats := make([]string, int(nCategories))
	if nCategories > 0 {
		raw := unsafe.Slice(categories, int(nCategories))
		for i, s := range raw {
			cats[i] = C.GoString((*C.char)(unsafe.Pointer(s)))
		}
	}
	return C.fmi2Status(h.SetDebugLogging(loggingOn != 0, cats))
}

//export fmi2SetupExperiment
func fmi2SetupExperiment(c C.fmi2Component, toleranceDefined C.fmi2Boolean, tolerance C.fmi2Real, startTime C.fmi2Real, stopTimeDefined C.fmi2Boolean, stopTime C.fmi2Real) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	return C.fmi2Status(h.SetupExperiment(toleranceDefined != 0, float64(tolerance), float64(startTime), stopTimeDefined != 0, float64(stopTime)))
}

//export fmi2EnterInitializationMode
func fmi2EnterInitializationMode(c C.fmi2Component) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	return C.fmi2Status(h.EnterInitializationMode())
}

//export fmi2ExitInitializationMode
func fmi2ExitInitializationMode(c C.fmi2Component) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	return C.fmi2Status(h.ExitInitializationMode())
}

//export fmi2Terminate
func fmi2Terminate(c C.fmi2Component) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	return C.fmi2Status(h.Terminate())
}

//export fmi2Reset
func fmi2Reset(c C.fmi2Component) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	return C.fmi2Status(h.Reset())
}

// --- FMI2: getters/setters --------------------------------------------------

//export fmi2GetReal
func fmi2GetReal(c C.fmi2Component, vr *C.fmi2ValueReference, nvr C.size_t, value *C.fmi2Real) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	values, status := h.GetReal(refSlice(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvr))
		for i, v := range values {
			dst[i] = C.fmi2Real(v)
		}
	}
	return C.fmi2Status(status)
}

//export fmi2GetInteger
func fmi2GetInteger(c C.fmi2Component, vr *C.fmi2ValueReference, nvr C.size_t, value *C.fmi2Integer) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	values, status := h.GetInteger(refSlice(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvr))
		for i, v := range values {
			dst[i] = C.fmi2Integer(v)
		}
	}
	return C.fmi2Status(status)
}

//export fmi2GetBoolean
func fmi2GetBoolean(c C.fmi2Component, vr *C.fmi2ValueReference, nvr C.size_t, value *C.fmi2Boolean) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	values, status := h.GetBoolean(refSlice(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvr))
		for i, v := range values {
			if v {
				dst[i] = 1
			} else {
				dst[i] = 0
			}
		}
	}
	return C.fmi2Status(status)
}

//export fmi2GetString
func fmi2GetString(c C.fmi2Component, vr *C.fmi2ValueReference, nvr C.size_t, value *C.fmi2String) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	status := h.GetString(refSlice(vr, nvr))
	if status <= fmi2.Warning {
		strs := h.StringBuffer()
		dst := unsafe.Slice(value, int(nvr))
		for i, s := range strs {
			dst[i] = C.CString(s)
		}
	}
	return C.fmi2Status(status)
}

//export fmi2SetReal
func fmi2SetReal(c C.fmi2Component, vr *C.fmi2ValueReference, nvr C.size_t, value *C.fmi2Real) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	src := unsafe.Slice(value, int(nvr))
	vals := make([]float64, len(src))
	for i, v := range src {
		vals[i] = float64(v)
	}
	return C.fmi2Status(h.SetReal(refSlice(vr, nvr), vals))
}

//export fmi2SetInteger
func fmi2SetInteger(c C.fmi2Component, vr *C.fmi2ValueReference, nvr C.size_t, value *C.fmi2Integer) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	src := unsafe.Slice(value, int(nvr))
	vals := make([]int32, len(src))
	for i, v := range src {
		vals[i] = int32(v)
	}
	return C.fmi2Status(h.SetInteger(refSlice(vr, nvr), vals))
}

//export fmi2SetBoolean
func fmi2SetBoolean(c C.fmi2Component, vr *C.fmi2ValueReference, nvr C.size_t, value *C.fmi2Boolean) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	return C.fmi2Status(h.SetBoolean(refSlice(vr, nvr), boolsFromCInt(value, nvr)))
}

//export fmi2SetString
func fmi2SetString(c C.fmi2Component, vr *C.fmi2ValueReference, nvr C.size_t, value *C.fmi2String) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	src := unsafe.Slice(value, int(nvr))
	vals := make([]string, len(src))
	for i, s := range src {
		vals[i] = C.GoString((*C.char)(unsafe.Pointer(s)))
	}
	return C.fmi2Status(h.SetString(refSlice(vr, nvr), vals))
}

// --- FMI2: stepping and derivatives -----------------------------------------

//export fmi2DoStep
func fmi2DoStep(c C.fmi2Component, currentCommunicationPoint, communicationStepSize C.fmi2Real, noSetFMUStatePriorToCurrentPoint C.fmi2Boolean) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	return C.fmi2Status(h.DoStep(float64(currentCommunicationPoint), float64(communicationStepSize), noSetFMUStatePriorToCurrentPoint != 0))
}

//export fmi2CancelStep
func fmi2CancelStep(c C.fmi2Component) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	return C.fmi2Status(h.CancelStep())
}

//export fmi2GetDirectionalDerivative
func fmi2GetDirectionalDerivative(c C.fmi2Component, unknownRefs *C.fmi2ValueReference, nUnknown C.size_t, knownRefs *C.fmi2ValueReference, nKnown C.size_t, knownDerivatives *C.fmi2Real, sensitivity *C.fmi2Real) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	srcDeriv := unsafe.Slice(knownDerivatives, int(nKnown))
	known := make([]float64, len(srcDeriv))
	for i, v := range srcDeriv {
		known[i] = float64(v)
	}
	out, status := h.GetDirectionalDerivative(refSlice(unknownRefs, nUnknown), refSlice(knownRefs, nKnown), known)
	if out != nil {
		dst := unsafe.Slice(sensitivity, int(nUnknown))
		for i, v := range out {
			dst[i] = C.fmi2Real(v)
		}
	}
	return C.fmi2Status(status)
}

//export fmi2SetRealInputDerivatives
func fmi2SetRealInputDerivatives(c C.fmi2Component, vr *C.fmi2ValueReference, nvr C.size_t, order *C.fmi2Integer, value *C.fmi2Real) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	orders := make([]uint32, int(nvr))
	for i, v := range unsafe.Slice(order, int(nvr)) {
		orders[i] = uint32(v)
	}
	values := make([]float64, int(nvr))
	for i, v := range unsafe.Slice(value, int(nvr)) {
		values[i] = float64(v)
	}
	return C.fmi2Status(h.SetRealInputDerivatives(refSlice(vr, nvr), orders, values))
}

//export fmi2GetRealOutputDerivatives
func fmi2GetRealOutputDerivatives(c C.fmi2Component, vr *C.fmi2ValueReference, nvr C.size_t, order *C.fmi2Integer, value *C.fmi2Real) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	orders := make([]uint32, int(nvr))
	for i, v := range unsafe.Slice(order, int(nvr)) {
		orders[i] = uint32(v)
	}
	out, status := h.GetRealOutputDerivatives(refSlice(vr, nvr), orders)
	if out != nil {
		dst := unsafe.Slice(value, int(nvr))
		for i, v := range out {
			dst[i] = C.fmi2Real(v)
		}
	}
	return C.fmi2Status(status)
}

// --- FMI2: FMU state ---------------------------------------------------------

var fmi2States = newHandleRegistry[*fmi2.SavedState]()

//export fmi2GetFMUstate
func fmi2GetFMUstate(c C.fmi2Component, state *C.fmi2FMUstate) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	s, status := h.GetFMUstate()
	if s != nil {
		id := fmi2States.store(s)
		*state = C.fmi2FMUstate(unsafe.Pointer(uintptr(id)))
	}
	return C.fmi2Status(status)
}

//export fmi2SetFMUstate
func fmi2SetFMUstate(c C.fmi2Component, state C.fmi2FMUstate) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	s, _ := fmi2States.load(uint64(uintptr(state)))
	return C.fmi2Status(h.SetFMUstate(s))
}

//export fmi2FreeFMUstate
func fmi2FreeFMUstate(c C.fmi2Component, state *C.fmi2FMUstate) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	id := uint64(uintptr(*state))
	s, _ := fmi2States.load(id)
	status := h.FreeFMUstate(s)
	fmi2States.delete(id)
	*state = nil
	return C.fmi2Status(status)
}

//export fmi2SerializedFMUstateSize
func fmi2SerializedFMUstateSize(c C.fmi2Component, state C.fmi2FMUstate, size *C.size_t) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	s, _ := fmi2States.load(uint64(uintptr(state)))
	n, status := h.SerializedFMUstateSize(s)
	*size = C.size_t(n)
	return C.fmi2Status(status)
}

//export fmi2SerializeFMUstate
func fmi2SerializeFMUstate(c C.fmi2Component, state C.fmi2FMUstate, serializedState *C.fmi2Byte, size C.size_t) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	s, _ := fmi2States.load(uint64(uintptr(state)))
	bytes, status := h.SerializeFMUstate(s, int(size))
	if bytes != nil {
		dst := unsafe.Slice((*byte)(unsafe.Pointer(serializedState)), int(size))
		copy(dst, bytes)
	}
	return C.fmi2Status(status)
}

//export fmi2DeSerializeFMUstate
func fmi2DeSerializeFMUstate(c C.fmi2Component, serializedState *C.fmi2Byte, size C.size_t, state *C.fmi2FMUstate) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	buf := make([]byte, int(size))
	copy(buf, unsafe.Slice((*byte)(unsafe.Pointer(serializedState)), int(size)))
	s, status := h.DeSerializeFMUstate(buf)
	if s != nil {
		id := fmi2States.store(s)
		*state = C.fmi2FMUstate(unsafe.Pointer(uintptr(id)))
	}
	return C.fmi2Status(status)
}

// --- FMI2: status queries ----------------------------------------------------

//export fmi2GetStatus
func fmi2GetStatus(c C.fmi2Component, kind C.fmi2StatusKind, value *C.fmi2Status) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	v, status := h.GetStatus(fmi2.StatusKind(kind))
	*value = C.fmi2Status(v)
	return C.fmi2Status(status)
}

//export fmi2GetRealStatus
func fmi2GetRealStatus(c C.fmi2Component, kind C.fmi2StatusKind, value *C.fmi2Real) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	v, status := h.GetRealStatus(fmi2.StatusKind(kind))
	*value = C.fmi2Real(v)
	return C.fmi2Status(status)
}

//export fmi2GetIntegerStatus
func fmi2GetIntegerStatus(c C.fmi2Component, kind C.fmi2StatusKind, value *C.fmi2Integer) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	v, status := h.GetIntegerStatus(fmi2.StatusKind(kind))
	*value = C.fmi2Integer(v)
	return C.fmi2Status(status)
}

//export fmi2GetBooleanStatus
func fmi2GetBooleanStatus(c C.fmi2Component, kind C.fmi2StatusKind, value *C.fmi2Boolean) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	v, status := h.GetBooleanStatus(fmi2.StatusKind(kind))
	if v {
		*value = 1
	} else {
		*value = 0
	}
	return C.fmi2Status(status)
}

//export fmi2GetStringStatus
func fmi2GetStringStatus(c C.fmi2Component, kind C.fmi2StatusKind, value *C.fmi2String) C.fmi2Status {
	h, _ := fmi2HandleFor(c)
	if h == nil {
		return C.fmi2Status(fmi2.Error)
	}
	v, status := h.GetStringStatus(fmi2.StatusKind(kind))
	*value = C.CString(v)
	return C.fmi2Status(status)
}

// --- FMI3 ---------------------------------------------------------------

//export fmi3GetVersion
func fmi3GetVersion() C.fmi3String {
	return C.CString(fmi3.Version)
}

func fmi3HandleFor(c C.fmi3Instance) (*fmi3.Handle, uint64) {
	id := uint64(uintptr(c))
	h, ok := fmi3Handles.load(id)
	if !ok {
		logger.Error("cmd/unifmu-shim: unknown fmi3Instance handle", "id", id)
		return nil, id
	}
	return h, id
}

//export fmi3InstantiateCoSimulation
func fmi3InstantiateCoSimulation(instanceName, instantiationToken, resourcePath C.fmi3String, visible, loggingOn, eventModeUsed, earlyReturnAllowed C.fmi3Boolean, requiredIntermediateVariables *C.fmi3ValueReference, nRequiredIntermediateVariables C.size_t, instanceEnvironment C.fmi3InstanceEnvironment, logMessage C.fmi3LogMessageCallback, intermediateUpdate unsafe.Pointer) C.fmi3Instance {
	h, err := fmi3.InstantiateCoSimulation(fmi3.InstantiateCoSimulationParams{
		InstanceName:       C.GoString(instanceName),
		InstantiationToken: C.GoString(instantiationToken),
		ResourceLocation:   C.GoString(resourcePath),
		Visible:            visible != 0,
		LoggingOn:          loggingOn != 0,
		EventModeUsed:      eventModeUsed != 0,
		EarlyReturnAllowed: earlyReturnAllowed != 0,
	}, fmi3Logger(instanceEnvironment, logMessage))
	if err != nil {
		return nil
	}
	id := fmi3Handles.store(h)
	return C.fmi3Instance(unsafe.Pointer(uintptr(id)))
}

//export fmi3InstantiateModelExchange
func fmi3InstantiateModelExchange(instanceName C.fmi3String) C.fmi3Instance {
	_, _ = fmi3.InstantiateModelExchange(C.GoString(instanceName))
	return nil
}

//export fmi3InstantiateScheduledExecution
func fmi3InstantiateScheduledExecution(instanceName C.fmi3String) C.fmi3Instance {
	_, _ = fmi3.InstantiateScheduledExecution(C.GoString(instanceName))
	return nil
}

//export fmi3FreeInstance
func fmi3FreeInstance(c C.fmi3Instance) {
	h, id := fmi3HandleFor(c)
	if h == nil {
		return
	}
	h.FreeInstance()
	fmi3Handles.delete(id)
}

//export fmi3SetDebugLogging
func fmi3SetDebugLogging(c C.fmi3Instance, loggingOn C.fmi3Boolean, nCategories C.size_t, categories **C.fmi3String) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	cats := make([]string, int(nCategories))
	if nCategories > 0 {
		raw := unsafe.Slice(categories, int(nCategories))
		for i, s := range raw {
			cats[i] = C.GoString((*C.char)(unsafe.Pointer(s)))
		}
	}
	return C.fmi3Status(h.SetDebugLogging(loggingOn != 0, cats))
}

//export fmi3EnterInitializationMode
func fmi3EnterInitializationMode(c C.fmi3Instance, toleranceDefined C.fmi3Boolean, tolerance C.fmi3Float64, startTime C.fmi3Float64, stopTimeDefined C.fmi3Boolean, stopTime C.fmi3Float64) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	return C.fmi3Status(h.EnterInitializationMode(toleranceDefined != 0, float64(tolerance), float64(startTime), stopTimeDefined != 0, float64(stopTime)))
}

//export fmi3ExitInitializationMode
func fmi3ExitInitializationMode(c C.fmi3Instance) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	return C.fmi3Status(h.ExitInitializationMode())
}

//export fmi3Terminate
func fmi3Terminate(c C.fmi3Instance) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	return C.fmi3Status(h.Terminate())
}

//export fmi3Reset
func fmi3Reset(c C.fmi3Instance) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	return C.fmi3Status(h.Reset())
}

//export fmi3EnterEventMode
func fmi3EnterEventMode(c C.fmi3Instance) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	return C.fmi3Status(h.EnterEventMode())
}

//export fmi3EnterStepMode
func fmi3EnterStepMode(c C.fmi3Instance) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	return C.fmi3Status(h.EnterStepMode())
}

//export fmi3EnterConfigurationMode
func fmi3EnterConfigurationMode(c C.fmi3Instance) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	return C.fmi3Status(h.EnterConfigurationMode())
}

//export fmi3ExitConfigurationMode
func fmi3ExitConfigurationMode(c C.fmi3Instance) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	return C.fmi3Status(h.ExitConfigurationMode())
}

//export fmi3DoStep
func fmi3DoStep(c C.fmi3Instance, currentCommunicationPoint, communicationStepSize C.fmi3Float64, noSetFMUStatePriorToCurrentPoint C.fmi3Boolean, eventHandlingNeeded, terminateRequested, earlyReturn *C.fmi3Boolean, lastSuccessfulTime *C.fmi3Float64) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	res := h.DoStep(float64(currentCommunicationPoint), float64(communicationStepSize), noSetFMUStatePriorToCurrentPoint != 0)

	writeOptionalCBool("fmi3DoStep/eventHandlingNeeded", eventHandlingNeeded, res.EventHandlingNeeded)
	writeOptionalCBool("fmi3DoStep/terminateRequested", terminateRequested, res.TerminateRequested)
	writeOptionalCBool("fmi3DoStep/earlyReturn", earlyReturn, res.EarlyReturn)
	writeOptionalCFloat64("fmi3DoStep/lastSuccessfulTime", lastSuccessfulTime, res.HasLastSuccessfulTime, res.LastSuccessfulTime)

	return C.fmi3Status(res.Status)
}

// writeOptionalCBool/writeOptionalCFloat64 convert a (possibly null) C
// out-pointer to a Go pointer and delegate to internal/fmi3's null-tolerant
// writers; this is the one place the Open Question 2 resolution actually
// touches a C pointer.
func writeOptionalCBool(op string, out *C.fmi3Boolean, v bool) {
	if out == nil {
		fmi3.WriteOptionalBool(op, nil, v)
		return
	}
	var goOut bool
	fmi3.WriteOptionalBool(op, &goOut, v)
	if goOut {
		*out = 1
	} else {
		*out = 0
	}
}

func writeOptionalCFloat64(op string, out *C.fmi3Float64, defined bool, v float64) {
	if out == nil {
		fmi3.WriteOptionalFloat64(op, nil, defined, v)
		return
	}
	var goOut float64
	fmi3.WriteOptionalFloat64(op, &goOut, defined, v)
	if defined {
		*out = C.fmi3Float64(goOut)
	}
}

//export fmi3UpdateDiscreteStates
func fmi3UpdateDiscreteStates(c C.fmi3Instance, discreteStatesNeedUpdate, terminateSimulation, nominalsChanged, valuesChanged, nextEventTimeDefined *C.fmi3Boolean, nextEventTime *C.fmi3Float64) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	res := h.UpdateDiscreteStates()

	writeOptionalCBool("fmi3UpdateDiscreteStates/discreteStatesNeedUpdate", discreteStatesNeedUpdate, res.DiscreteStatesNeedUpdate)
	writeOptionalCBool("fmi3UpdateDiscreteStates/terminateSimulation", terminateSimulation, res.TerminateSimulation)
	writeOptionalCBool("fmi3UpdateDiscreteStates/nominalsOfContinuousStatesChanged", nominalsChanged, res.NominalsOfContinuousStatesChanged)
	writeOptionalCBool("fmi3UpdateDiscreteStates/valuesOfContinuousStatesChanged", valuesChanged, res.ValuesOfContinuousStatesChanged)
	writeOptionalCBool("fmi3UpdateDiscreteStates/nextEventTimeDefined", nextEventTimeDefined, res.NextEventTimeDefined)
	writeOptionalCFloat64("fmi3UpdateDiscreteStates/nextEventTime", nextEventTime, res.NextEventTimeDefined, res.NextEventTime)

	return C.fmi3Status(res.Status)
}

//export fmi3GetFloat64
func fmi3GetFloat64(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Float64, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetFloat64(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			dst[i] = C.fmi3Float64(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetFloat64
func fmi3SetFloat64(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Float64, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]float64, len(src))
	for i, v := range src {
		vals[i] = float64(v)
	}
	return C.fmi3Status(h.SetFloat64(refSlice3(vr, nvr), vals))
}

//export fmi3GetInt32
func fmi3GetInt32(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Int32, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetInt32(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			dst[i] = C.fmi3Int32(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetInt32
func fmi3SetInt32(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Int32, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]int32, len(src))
	for i, v := range src {
		vals[i] = int32(v)
	}
	return C.fmi3Status(h.SetInt32(refSlice3(vr, nvr), vals))
}

//export fmi3GetUInt32
func fmi3GetUInt32(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3UInt32, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetUInt32(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			dst[i] = C.fmi3UInt32(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetUInt32
func fmi3SetUInt32(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3UInt32, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]uint32, len(src))
	for i, v := range src {
		vals[i] = uint32(v)
	}
	return C.fmi3Status(h.SetUInt32(refSlice3(vr, nvr), vals))
}

//export fmi3GetFloat32
func fmi3GetFloat32(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Float32, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetFloat32(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			dst[i] = C.fmi3Float32(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetFloat32
func fmi3SetFloat32(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Float32, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]float32, len(src))
	for i, v := range src {
		vals[i] = float32(v)
	}
	return C.fmi3Status(h.SetFloat32(refSlice3(vr, nvr), vals))
}

//export fmi3GetInt8
func fmi3GetInt8(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Int8, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetInt8(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			dst[i] = C.fmi3Int8(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetInt8
func fmi3SetInt8(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Int8, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]int8, len(src))
	for i, v := range src {
		vals[i] = int8(v)
	}
	return C.fmi3Status(h.SetInt8(refSlice3(vr, nvr), vals))
}

//export fmi3GetInt16
func fmi3GetInt16(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Int16, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetInt16(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			dst[i] = C.fmi3Int16(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetInt16
func fmi3SetInt16(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Int16, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]int16, len(src))
	for i, v := range src {
		vals[i] = int16(v)
	}
	return C.fmi3Status(h.SetInt16(refSlice3(vr, nvr), vals))
}

//export fmi3GetInt64
func fmi3GetInt64(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Int64, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetInt64(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			dst[i] = C.fmi3Int64(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetInt64
func fmi3SetInt64(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Int64, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]int64, len(src))
	for i, v := range src {
		vals[i] = int64(v)
	}
	return C.fmi3Status(h.SetInt64(refSlice3(vr, nvr), vals))
}

//export fmi3GetUInt8
func fmi3GetUInt8(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3UInt8, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetUInt8(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			dst[i] = C.fmi3UInt8(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetUInt8
func fmi3SetUInt8(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3UInt8, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]uint8, len(src))
	for i, v := range src {
		vals[i] = uint8(v)
	}
	return C.fmi3Status(h.SetUInt8(refSlice3(vr, nvr), vals))
}

//export fmi3GetUInt16
func fmi3GetUInt16(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3UInt16, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetUInt16(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			dst[i] = C.fmi3UInt16(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetUInt16
func fmi3SetUInt16(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3UInt16, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]uint16, len(src))
	for i, v := range src {
		vals[i] = uint16(v)
	}
	return C.fmi3Status(h.SetUInt16(refSlice3(vr, nvr), vals))
}

//export fmi3GetUInt64
func fmi3GetUInt64(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3UInt64, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetUInt64(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			dst[i] = C.fmi3UInt64(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetUInt64
func fmi3SetUInt64(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3UInt64, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]uint64, len(src))
	for i, v := range src {
		vals[i] = uint64(v)
	}
	return C.fmi3Status(h.SetUInt64(refSlice3(vr, nvr), vals))
}

//export fmi3GetBoolean
func fmi3GetBoolean(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Boolean, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetBoolean(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvalue))
		for i, v := range values {
			if v {
				dst[i] = 1
			} else {
				dst[i] = 0
			}
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetBoolean
func fmi3SetBoolean(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Boolean, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	return C.fmi3Status(h.SetBoolean(refSlice3(vr, nvr), boolsFromC3(value, nvalue)))
}

//export fmi3GetString
func fmi3GetString(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3String, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	status := h.GetString(refSlice3(vr, nvr))
	if status <= fmi3.Warning {
		strs := h.StringBuffer()
		dst := unsafe.Slice(value, int(nvalue))
		for i, s := range strs {
			dst[i] = C.CString(s)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetString
func fmi3SetString(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3String, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvalue))
	vals := make([]string, len(src))
	for i, s := range src {
		vals[i] = C.GoString((*C.char)(unsafe.Pointer(s)))
	}
	return C.fmi3Status(h.SetString(refSlice3(vr, nvr), vals))
}

//export fmi3GetBinary
func fmi3GetBinary(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, valueSizes *C.size_t, value *C.fmi3Binary, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	status := h.GetBinary(refSlice3(vr, nvr))
	if status <= fmi3.Warning {
		bins := h.BinaryBuffer()
		dstVal := unsafe.Slice(value, int(nvalue))
		dstSize := unsafe.Slice(valueSizes, int(nvalue))
		for i, b := range bins {
			dstSize[i] = C.size_t(len(b))
			if len(b) == 0 {
				dstVal[i] = nil
				continue
			}
			dstVal[i] = (C.fmi3Binary)(C.CBytes(b))
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetBinary
func fmi3SetBinary(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, valueSizes *C.size_t, value *C.fmi3Binary, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	sizes := unsafe.Slice(valueSizes, int(nvalue))
	ptrs := unsafe.Slice(value, int(nvalue))
	vals := make([][]byte, int(nvalue))
	for i := range vals {
		n := int(sizes[i])
		if n == 0 || ptrs[i] == nil {
			continue
		}
		vals[i] = C.GoBytes(unsafe.Pointer(ptrs[i]), C.int(n))
	}
	return C.fmi3Status(h.SetBinary(refSlice3(vr, nvr), vals))
}

//export fmi3GetClock
func fmi3GetClock(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Clock) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetClock(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(value, int(nvr))
		for i, v := range values {
			if v {
				dst[i] = 1
			} else {
				dst[i] = 0
			}
		}
	}
	return C.fmi3Status(status)
}

//export fmi3SetClock
func fmi3SetClock(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, value *C.fmi3Clock) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	src := unsafe.Slice(value, int(nvr))
	vals := make([]bool, len(src))
	for i, v := range src {
		vals[i] = v != 0
	}
	return C.fmi3Status(h.SetClock(refSlice3(vr, nvr), vals))
}

//export fmi3GetIntervalDecimal
func fmi3GetIntervalDecimal(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, interval *C.fmi3Float64, qualifier *C.fmi3IntervalQualifier) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, quals, status := h.GetIntervalDecimal(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(interval, int(nvr))
		dstQ := unsafe.Slice(qualifier, int(nvr))
		for i, v := range values {
			dst[i] = C.fmi3Float64(v)
			dstQ[i] = C.fmi3IntervalQualifier(quals[i])
		}
	}
	return C.fmi3Status(status)
}

//export fmi3GetIntervalFraction
func fmi3GetIntervalFraction(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, counter *C.fmi3UInt64, qualifier *C.fmi3IntervalQualifier) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, quals, status := h.GetIntervalFraction(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(counter, int(nvr))
		dstQ := unsafe.Slice(qualifier, int(nvr))
		for i, v := range values {
			dst[i] = C.fmi3UInt64(v)
			dstQ[i] = C.fmi3IntervalQualifier(quals[i])
		}
	}
	return C.fmi3Status(status)
}

//export fmi3GetShiftDecimal
func fmi3GetShiftDecimal(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, shift *C.fmi3Float64) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetShiftDecimal(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(shift, int(nvr))
		for i, v := range values {
			dst[i] = C.fmi3Float64(v)
		}
	}
	return C.fmi3Status(status)
}

//export fmi3GetShiftFraction
func fmi3GetShiftFraction(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, counter *C.fmi3UInt64) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	values, status := h.GetShiftFraction(refSlice3(vr, nvr))
	if values != nil {
		dst := unsafe.Slice(counter, int(nvr))
		for i, v := range values {
			dst[i] = C.fmi3UInt64(v)
		}
	}
	return C.fmi3Status(status)
}

// --- FMI3: FMU state ----------------------------------------------------

var fmi3States = newHandleRegistry[*fmi3.SavedState]()

//export fmi3GetFMUState
func fmi3GetFMUState(c C.fmi3Instance, state *unsafe.Pointer) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	s, status := h.GetFMUstate()
	if s != nil {
		id := fmi3States.store(s)
		*state = unsafe.Pointer(uintptr(id))
	}
	return C.fmi3Status(status)
}

//export fmi3SetFMUState
func fmi3SetFMUState(c C.fmi3Instance, state unsafe.Pointer) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	s, _ := fmi3States.load(uint64(uintptr(state)))
	return C.fmi3Status(h.SetFMUstate(s))
}

//export fmi3FreeFMUState
func fmi3FreeFMUState(c C.fmi3Instance, state *unsafe.Pointer) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	id := uint64(uintptr(*state))
	s, _ := fmi3States.load(id)
	status := h.FreeFMUstate(s)
	fmi3States.delete(id)
	*state = nil
	return C.fmi3Status(status)
}

//export fmi3SerializedFMUStateSize
func fmi3SerializedFMUStateSize(c C.fmi3Instance, state unsafe.Pointer, size *C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	s, _ := fmi3States.load(uint64(uintptr(state)))
	n, status := h.SerializedFMUstateSize(s)
	*size = C.size_t(n)
	return C.fmi3Status(status)
}

//export fmi3SerializeFMUState
func fmi3SerializeFMUState(c C.fmi3Instance, state unsafe.Pointer, serializedState *C.fmi3Byte, size C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	s, _ := fmi3States.load(uint64(uintptr(state)))
	bytes, status := h.SerializeFMUstate(s, int(size))
	if bytes != nil {
		dst := unsafe.Slice((*byte)(unsafe.Pointer(serializedState)), int(size))
		copy(dst, bytes)
	}
	return C.fmi3Status(status)
}

//export fmi3DeserializeFMUState
func fmi3DeserializeFMUState(c C.fmi3Instance, serializedState *C.fmi3Byte, size C.size_t, state *unsafe.Pointer) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	buf := make([]byte, int(size))
	copy(buf, unsafe.Slice((*byte)(unsafe.Pointer(serializedState)), int(size)))
	s, status := h.DeSerializeFMUstate(buf)
	if s != nil {
		id := fmi3States.store(s)
		*state = unsafe.Pointer(uintptr(id))
	}
	return C.fmi3Status(status)
}

// --- FMI3: status and unsupported features -----------------------------

//export fmi3GetOutputDerivatives
func fmi3GetOutputDerivatives(c C.fmi3Instance, vr *C.fmi3ValueReference, nvr C.size_t, order *C.fmi3Int32, value *C.fmi3Float64, nvalue C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	// Continuous-time output derivatives are a Model Exchange concern; this
	// shim only instantiates Co-Simulation, so report the uniform error.
	_ = vr
	_ = nvr
	_ = order
	_ = value
	_ = nvalue
	logger.Error("fmi3GetOutputDerivatives: not supported by this shim")
	return C.fmi3Status(fmi3.Error)
}

//export fmi3GetDirectionalDerivative
func fmi3GetDirectionalDerivative(c C.fmi3Instance, unknowns *C.fmi3ValueReference, nUnknowns C.size_t, knowns *C.fmi3ValueReference, nKnowns C.size_t, seed *C.fmi3Float64, nSeed C.size_t, sensitivity *C.fmi3Float64, nSensitivity C.size_t) C.fmi3Status {
	h, _ := fmi3HandleFor(c)
	if h == nil {
		return C.fmi3Status(fmi3.Error)
	}
	seedVals := make([]float64, int(nSeed))
	for i, v := range unsafe.Slice(seed, int(nSeed)) {
		seedVals[i] = float64(v)
	}
	out, status := h.GetDirectionalDerivative(refSlice3(unknowns, nUnknowns), refSlice3(knowns, nKnowns), seedVals)
	if out != nil {
		dst := unsafe.Slice(sensitivity, int(nSensitivity))
		for i, v := range out {
			dst[i] = C.fmi3Float64(v)
		}
	}
	return C.fmi3Status(status)
}
