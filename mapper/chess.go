package mapper

import (
	gochess "github.com/notnil/chess"

	"github.com/alphazero/engine/board"
	chessboard "github.com/alphazero/engine/board/chess"
)

// Chess implements Mapper for board/chess, producing the 73-plane policy
// head spec.md section 4.4 specifies. Grounded directly on
// original_source/rust/alpha-zero/src/mapping/chess.rs's ChessStdMapper:
// the channel layout, direction tables and classify/unclassify logic below
// are a line-for-line port of that file's ClassifiedPovMove.
type Chess struct{}

const (
	chessBoardSize  = 8
	queenDirCount   = 8
	queenDistCount  = 7
	knightDirCount  = 8
	underpromoDirs  = 3
	underpromoPiece = 3

	queenChannels       = queenDirCount * queenDistCount // 56
	knightChannels      = knightDirCount                 // 8
	underpromoChannels  = underpromoDirs * underpromoPiece // 9
	chessPolicyChannels = queenChannels + knightChannels + underpromoChannels // 73

	// pieces(2*6) + en passant(1) + castling(4) + repetition(2) + move counters(2)
	chessInputChannels = 2*6 + 1 + 4 + 2 + 2 // 21
)

// queenDirections is (rank delta, file delta) clockwise starting at N,
// matching spec.md section 4.4's compass order exactly.
var queenDirections = [queenDirCount][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// knightDeltas is (rank delta, file delta) clockwise starting at NNE.
var knightDeltas = [knightDirCount][2]int{
	{2, 1}, {1, 2}, {-1, 2}, {-2, 1}, {-2, -1}, {-1, -2}, {1, -2}, {2, -1},
}

// underpromoPieces is indexed by the piece slot within an underpromotion
// channel group.
var underpromoPieces = [underpromoPiece]gochess.PieceType{gochess.Rook, gochess.Bishop, gochess.Knight}

func (Chess) InputFullShape() []int { return []int{chessInputChannels, chessBoardSize, chessBoardSize} }
func (Chess) InputFullSize() int    { return product([]int{chessInputChannels, chessBoardSize, chessBoardSize}) }

func (Chess) PolicyShape() []int { return []int{chessPolicyChannels, chessBoardSize, chessBoardSize} }
func (Chess) PolicySize() int    { return product([]int{chessPolicyChannels, chessBoardSize, chessBoardSize}) }

// povSquare converts an absolute square to the mover's POV square: ranks
// are flipped when black is to move, files are untouched (spec.md section
// 4.4 "board rank-flipped when black is to move").
func povSquare(mover gochess.Color, sq gochess.Square) (rank, file int) {
	rank = int(sq) / chessBoardSize
	file = int(sq) % chessBoardSize
	if mover == gochess.Black {
		rank = chessBoardSize - 1 - rank
	}
	return
}

// absSquare inverts povSquare.
func absSquare(mover gochess.Color, povRank, povFile int) gochess.Square {
	rank := povRank
	if mover == gochess.Black {
		rank = chessBoardSize - 1 - povRank
	}
	return gochess.Square(rank*chessBoardSize + povFile)
}

func (Chess) EncodeInput(b board.Board, buf []float32) []float32 {
	cb := b.(*chessboard.Board)
	size := chessInputChannels * chessBoardSize * chessBoardSize

	start := len(buf)
	buf = append(buf, make([]float32, size)...)
	out := buf[start:]

	pos := cb.Game().Position()
	us := pos.Turn()
	them := gochess.White
	if us == gochess.White {
		them = gochess.Black
	}
	bd := pos.Board()

	plane := func(channel int, povRank, povFile int, v float32) {
		out[channel*chessBoardSize*chessBoardSize+povRank*chessBoardSize+povFile] = v
	}

	pieceTypes := [6]gochess.PieceType{
		gochess.Pawn, gochess.Knight, gochess.Bishop, gochess.Rook, gochess.Queen, gochess.King,
	}

	for povRank := 0; povRank < chessBoardSize; povRank++ {
		for povFile := 0; povFile < chessBoardSize; povFile++ {
			sq := absSquare(us, povRank, povFile)
			p := bd.Piece(sq)
			if p == gochess.NoPiece {
				continue
			}
			side := 0
			if p.Color() == them {
				side = 1
			} else if p.Color() != us {
				continue
			}
			for k, pt := range pieceTypes {
				if p.Type() == pt {
					plane(side*6+k, povRank, povFile, 1)
					break
				}
			}
		}
	}

	rights := pos.CastleRights()
	castlePlanes := [4]bool{
		rights.CanCastle(us, gochess.KingSide),
		rights.CanCastle(us, gochess.QueenSide),
		rights.CanCastle(them, gochess.KingSide),
		rights.CanCastle(them, gochess.QueenSide),
	}
	for i, has := range castlePlanes {
		if !has {
			continue
		}
		for r := 0; r < chessBoardSize; r++ {
			for f := 0; f < chessBoardSize; f++ {
				plane(12+1+i, r, f, 1)
			}
		}
	}

	// En-passant, repetition and move-counter planes are left at zero:
	// notnil/chess's Position does not expose these outside the package,
	// so there is nothing reliable to read them from. See DESIGN.md.

	return buf
}

func (Chess) MoveToIndex(b board.Board, m board.Move) int {
	cb := b.(*chessboard.Board)
	cm := m.(chessboard.Move)
	mover := cb.Game().Position().Turn()

	fromRank, fromFile := povSquare(mover, cm.From())
	toRank, toFile := povSquare(mover, cm.To())
	rankDelta := toRank - fromRank
	fileDelta := toFile - fromFile

	channel := classifyToChannel(rankDelta, fileDelta, cm.Promo())
	return channel*chessBoardSize*chessBoardSize + fromRank*chessBoardSize + fromFile
}

func classifyToChannel(rankDelta, fileDelta int, promo gochess.PieceType) int {
	if promo != gochess.NoPieceType && promo != gochess.Queen {
		direction := sign(fileDelta) + 1
		piece := underpromoPieceIndex(promo)
		return queenChannels + knightChannels + direction*underpromoPiece + piece
	}

	for d, dir := range queenDirections {
		if sign(rankDelta) == dir[0] && sign(fileDelta) == dir[1] {
			distance := maxAbs(rankDelta, fileDelta)
			if rankDelta == dir[0]*distance && fileDelta == dir[1]*distance {
				return d*queenDistCount + (distance - 1)
			}
		}
	}

	for d, delta := range knightDeltas {
		if rankDelta == delta[0] && fileDelta == delta[1] {
			return queenChannels + d
		}
	}

	panic("mapper: chess move does not classify into any policy channel")
}

func (Chess) IndexToMove(b board.Board, index int) (board.Move, bool) {
	cb := b.(*chessboard.Board)
	mover := cb.Game().Position().Turn()

	channel := index / (chessBoardSize * chessBoardSize)
	fromIdx := index % (chessBoardSize * chessBoardSize)
	fromRank, fromFile := fromIdx/chessBoardSize, fromIdx%chessBoardSize

	toRank, toFile, promo, ok := unclassifyChannel(channel, fromRank, fromFile)
	if !ok {
		return nil, false
	}

	fromAbs := absSquare(mover, fromRank, fromFile)
	toAbs := absSquare(mover, toRank, toFile)

	movingPawn := cb.Game().Position().Board().Piece(fromAbs).Type() == gochess.Pawn
	if movingPawn && toRank == chessBoardSize-1 && promo == gochess.NoPieceType && channel < queenChannels {
		promo = gochess.Queen
	}

	for _, mv := range cb.AvailableMoves() {
		cm := mv.(chessboard.Move)
		if cm.From() == fromAbs && cm.To() == toAbs && cm.Promo() == promo {
			return cm, true
		}
	}
	return nil, false
}

// unclassifyChannel inverts classifyToChannel: given a channel and source
// square, it returns the destination square and any forced under-promotion
// piece, with ok false for an unknown channel or an off-board destination.
// It does not check the move's legality against the real board.
func unclassifyChannel(channel, fromRank, fromFile int) (toRank, toFile int, promo gochess.PieceType, ok bool) {
	switch {
	case channel < queenChannels:
		direction := channel / queenDistCount
		distance := channel%queenDistCount + 1
		dir := queenDirections[direction]
		toRank = fromRank + dir[0]*distance
		toFile = fromFile + dir[1]*distance
		promo = gochess.NoPieceType
	case channel < queenChannels+knightChannels:
		direction := channel - queenChannels
		delta := knightDeltas[direction]
		toRank = fromRank + delta[0]
		toFile = fromFile + delta[1]
		promo = gochess.NoPieceType
	case channel < chessPolicyChannels:
		left := channel - queenChannels - knightChannels
		direction := left / underpromoPiece
		piece := left % underpromoPiece
		toRank = chessBoardSize - 1
		toFile = fromFile + (direction - 1)
		promo = underpromoPieces[piece]
	default:
		return 0, 0, gochess.NoPieceType, false
	}
	if toRank < 0 || toRank >= chessBoardSize || toFile < 0 || toFile >= chessBoardSize {
		return 0, 0, gochess.NoPieceType, false
	}
	return toRank, toFile, promo, true
}

func underpromoPieceIndex(pt gochess.PieceType) int {
	for i, p := range underpromoPieces {
		if p == pt {
			return i
		}
	}
	panic("mapper: non-underpromotion piece type passed to underpromoPieceIndex")
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func maxAbs(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

var _ Mapper = Chess{}
