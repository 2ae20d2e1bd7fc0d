package repository

import (
	"time"

	"taman-digital/internal/domain"
)

const day = 24 * time.Hour

// examplePosts returns the content written on first run so a fresh install
// has something to read.
func examplePosts(now time.Time) []domain.Post {
	at := func(ago time.Duration) *time.Time {
		t := now.Add(-ago)
		return &t
	}
	posts := []domain.Post{
		{
			ID:      "1",
			Title:   "Seni Desain Minimalis",
			Excerpt: `Menjelajahi mengapa "kurang" seringkali berarti "lebih" dalam antarmuka digital dan beban kognitif.`,
			Content: `Minimalisme bukan hanya tentang menghilangkan elemen; ini tentang memperkuat apa yang penting. Di dunia yang jenuh dengan informasi, kejelasan adalah kemewahan tertinggi.

Ketika kita mendesain dengan pengendalian diri, kita memaksa diri kita untuk membuat keputusan yang lebih sulit. Apa yang esensial? Apa yang hanya hiasan? Setiap piksel yang ditambahkan mengurangi penonjolan dari segala hal lainnya.

### Biaya kognitif dari kekacauan

Pengguna datang ke aplikasi kita dengan cadangan perhatian yang terbatas. Antarmuka yang kompleks membebani cadangan ini dengan segera. Dengan mengurangi gangguan visual, kita menghormati energi mental pengguna.

> "Kesempurnaan dicapai, bukan ketika tidak ada lagi yang bisa ditambahkan, tetapi ketika tidak ada lagi yang bisa diambil." - Antoine de Saint-Exupéry

Filosofi ini meluas lebih dari sekadar piksel. Kesederhanaan adalah sebuah disiplin.`,
			Date:     *at(2 * day),
			ReadTime: "3 min baca",
			Tags:     []string{"Desain", "Filosofi"},
			Likes:    42,
			Shares:   12,
			Comments: []domain.Comment{
				{ID: "c1", AuthorUsername: "pengunjung", Content: "Tulisan yang sangat membuka wawasan!", Date: *at(80000 * time.Second)},
			},
			LastEdited: at(2 * day),
		},
		{
			ID:      "2",
			Title:   "Refleksi tentang Glassmorphism",
			Excerpt: "Bagaimana transluensi dan blur menciptakan kedalaman dan hierarki dalam aplikasi web modern.",
			Content: `Glassmorphism telah kembali, berevolusi dari estetika kaca buram antarmuka OS awal menjadi alat yang canggih untuk membangun hierarki.

Dengan melapisi permukaan yang tembus cahaya, kita dapat menciptakan rasa kedalaman tanpa bergantung pada bayangan jatuh yang berat atau batas yang kaku. Koneksi ke realitas ini membumikan antarmuka pengguna.

Ini sangat cocok dengan mode gelap, di mana sumber cahaya dapat menciptakan sorotan spekular halus pada tepi "kaca".`,
			Date:       *at(5 * day),
			ReadTime:   "2 min baca",
			Tags:       []string{"UI", "Tren"},
			Likes:      28,
			Shares:     5,
			Comments:   []domain.Comment{},
			LastEdited: at(5 * day),
		},
		{
			ID:      "3",
			Title:   "Keheningan dalam Kode",
			Excerpt: `Mengapa komentar harus menjelaskan "mengapa", bukan "bagaimana", dan keindahan logika yang mendokumentasikan dirinya sendiri.`,
			Content: `Kita sering berbicara tentang kode yang bersih, tetapi seperti apa suaranya? Suaranya seperti keheningan. Itu adalah ketiadaan gesekan saat membaca sebuah fungsi.

Jika Anda harus berhenti untuk memecahkan kode nama variabel, itu adalah kebisingan. Jika Anda harus melompat ke tiga file berbeda untuk memahami perubahan status, itu adalah statis.

Menulis kode adalah bentuk komunikasi dengan diri masa depan Anda dan tim Anda.`,
			Date:       *at(10 * day),
			ReadTime:   "4 min baca",
			Tags:       []string{"Teknik", "Koding"},
			Likes:      35,
			Shares:     8,
			Comments:   []domain.Comment{},
			LastEdited: at(10 * day),
		},
	}
	for i := range posts {
		posts[i].AuthorUsername = domain.DefaultAuthor
		posts[i].Status = domain.StatusPublished
		posts[i].SchemaVersion = domain.CurrentSchemaVersion
	}
	return posts
}
