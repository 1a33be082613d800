package common

//const TasVoteVersion = "0.1.0"
//const TasVoteVersion = "0.2.0"	//stake confirmations carry a request id
const TasVoteVersion = "0.3.0" //pending withdrawals confirmed by the ledger

// RecordVersion is written in front of every persisted proposal record
const RecordVersion = 1
