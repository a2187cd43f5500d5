package engine

// Command tokens understood by the engine. The < prefix fetches a value from
// the engine, > pushes one to it. These are the wire contract and cannot be
// renamed.
const (
	CmdName      = "<NAME"
	CmdNatoms    = "<NATOMS"
	CmdNpoles    = "<NPOLES"
	CmdIpoles    = "<IPOLES"
	CmdMolecules = "<MOLECULES"
	CmdResidues  = "<RESIDUES"
	CmdNprobes   = ">NPROBES"
	CmdProbes    = ">PROBES"
	CmdCoords    = ">COORDS"
	CmdDField    = "<DFIELD"
	CmdUField    = "<UFIELD"
	CmdExit      = "EXIT"
)
