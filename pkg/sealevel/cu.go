package sealevel

const (
	CUSyscallBaseCost                  = 100
	CULog64Units                       = 100
	CULogPubkeyUnits                   = 100
	CUCpiBytesPerUnit                  = 250
	CUCreateProgramAddressUnits        = 1500
	CUInvokeUnits                      = 1000
	CUSystemProgramDefaultComputeUnits = 150
	CUMaxCpiInstructionSize            = 1280
	CUHeapCostDefault                  = 8
)
