package events

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("buffer", Ordered, func() {
	Context("buffer", func() {
		It("add successfully", func() {
			buffer := newBuffer()

			err := buffer.PushBack(&message{Kind: OfferMessageKind, Data: []byte("msg1")})
			Expect(err).To(BeNil())
			Expect(buffer.Size()).To(Equal(1))

			err = buffer.PushBack(&message{Kind: OfferMessageKind, Data: []byte("msg2")})
			Expect(err).To(BeNil())
			Expect(buffer.Size()).To(Equal(2))
		})

		It("pop in insertion order", func() {
			buffer := newBuffer()

			Expect(buffer.PushBack(&message{Kind: OfferMessageKind, Data: []byte("msg1")})).To(Succeed())
			Expect(buffer.PushBack(&message{Kind: OfferMessageKind, Data: []byte("msg2")})).To(Succeed())
			Expect(buffer.PushBack(&message{Kind: PayoutMessageKind, Data: []byte("msg3")})).To(Succeed())
			Expect(buffer.Size()).To(Equal(3))

			m := buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte("msg1")))

			m = buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte("msg2")))

			m = buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte("msg3")))
			Expect(buffer.Size()).To(Equal(0))

			Expect(buffer.Pop()).To(BeNil())
		})
	})
})
