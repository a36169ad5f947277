// Package formats holds the column tables of every supported deck file and
// maps decoded records to deck entities.
//
//	entdados.dat  multi-record lines (TM, SIST, UH, UT, DP, TX, TVIAG, RI, RIVAR, VE, VERTJU)
//	operuh.dat    REST blocks with ELEM, LIM and VAR sub-records, closed by FIM
//	dadvaz.dat    single-kind inflow lines
//	hidr.dat      binary registry, 792-byte records, or its text variant
//
// Register wires them into a registry.Registry.
package formats
